package script

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCaps(files map[string]string) Capabilities {
	return Capabilities{
		ReadFile: func(path string) (string, error) {
			content, ok := files[path]
			if !ok {
				return "", fmt.Errorf("file %q does not exist", path)
			}
			return content, nil
		},
		WriteFile: func(path, content string) error {
			files[path] = content
			return nil
		},
	}
}

func TestRun_LogCapture(t *testing.T) {
	r := NewRunner(5 * time.Second)
	out, err := r.Run(context.Background(), `ws.Log("hello", 42)`, testCaps(nil))
	require.NoError(t, err)
	assert.Equal(t, "hello 42", out)
}

func TestRun_ReadWriteBoundToSnapshot(t *testing.T) {
	files := map[string]string{"in.txt": "abc"}
	r := NewRunner(5 * time.Second)

	src := `
content, err := ws.ReadFile("in.txt")
if err != nil {
	ws.Log("read failed:", err)
} else {
	ws.WriteFile("out.txt", content + content)
	ws.Log("wrote", len(content)*2, "bytes")
}`
	out, err := r.Run(context.Background(), src, testCaps(files))
	require.NoError(t, err)
	assert.Equal(t, "wrote 6 bytes", out)
	assert.Equal(t, "abcabc", files["out.txt"])
}

func TestRun_StdlibSubsetAvailable(t *testing.T) {
	r := NewRunner(5 * time.Second)
	src := `
import "strings"
ws.Log(strings.ToUpper("ok"))`
	out, err := r.Run(context.Background(), src, testCaps(nil))
	require.NoError(t, err)
	assert.Equal(t, "OK", out)
}

func TestRun_ForbiddenPackage(t *testing.T) {
	r := NewRunner(5 * time.Second)
	src := `
import "os"
ws.Log(os.Getenv("HOME"))`
	_, err := r.Run(context.Background(), src, testCaps(nil))
	assert.Error(t, err)
}

func TestRun_ScriptError(t *testing.T) {
	r := NewRunner(5 * time.Second)
	_, err := r.Run(context.Background(), `this is not go`, testCaps(nil))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "script error")
}

func TestRun_Empty(t *testing.T) {
	r := NewRunner(5 * time.Second)
	_, err := r.Run(context.Background(), "   ", testCaps(nil))
	assert.Error(t, err)
}

func TestRun_Timeout(t *testing.T) {
	r := NewRunner(100 * time.Millisecond)
	src := `
sum := 0
for i := 0; i < 1000000000; i++ {
	sum += i
}
ws.Log(sum)`
	_, err := r.Run(context.Background(), src, testCaps(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}
