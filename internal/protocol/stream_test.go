package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractStringField_OpenQuote(t *testing.T) {
	got, ok := ExtractStringField(`{"thought":"Look`, "thought")
	assert.True(t, ok)
	assert.Equal(t, "Look", got)

	got, ok = ExtractStringField(`{"thought":"Looking for file"`, "thought")
	assert.True(t, ok)
	assert.Equal(t, "Looking for file", got)
}

func TestExtractStringField_MonotonicPrefixGrowth(t *testing.T) {
	full := `{"thought":"Scanning the workspace for log files","plan":[`
	prev := ""
	for i := 14; i <= len(full); i++ {
		got, ok := ExtractStringField(full[:i], "thought")
		if !ok {
			continue
		}
		assert.True(t, len(got) >= len(prev), "value shrank at cut %d", i)
		prev = got
	}
	assert.Equal(t, "Scanning the workspace for log files", prev)
}

func TestExtractStringField_ClosedWithEscapes(t *testing.T) {
	got, ok := ExtractStringField(`{"thought":"line one\nline \"two\"\t\\end","plan":[]}`, "thought")
	assert.True(t, ok)
	assert.Equal(t, "line one\nline \"two\"\t\\end", got)
}

func TestExtractStringField_PartialEscapes(t *testing.T) {
	// Stream cut right after a backslash: the incomplete escape is dropped.
	got, ok := ExtractStringField(`{"thought":"tab\t then\`, "thought")
	assert.True(t, ok)
	assert.Equal(t, "tab\t then", got)
}

func TestExtractStringField_NotStarted(t *testing.T) {
	_, ok := ExtractStringField(`{"thou`, "thought")
	assert.False(t, ok)

	_, ok = ExtractStringField(`{"thought":`, "thought")
	assert.False(t, ok)
}

func TestExtractStringField_FieldNameMentionedEarlier(t *testing.T) {
	got, ok := ExtractStringField(`{"plan":["mention \"finalAnswer\" here"],"finalAnswer":"done"}`, "finalAnswer")
	assert.True(t, ok)
	assert.Equal(t, "done", got)
}

func TestExtractArrayField_Partial(t *testing.T) {
	items := ExtractArrayField(`{"plan":["read the log","write a summ`, "plan")
	assert.Equal(t, []string{"read the log", "write a summ"}, items)
}

func TestExtractArrayField_Complete(t *testing.T) {
	items := ExtractArrayField(`{"plan":["a","b","c"],"actions":[]}`, "plan")
	assert.Equal(t, []string{"a", "b", "c"}, items)
}

func TestExtractArrayField_AbsentOrMalformed(t *testing.T) {
	assert.Nil(t, ExtractArrayField(`{"thought":"x"}`, "plan"))
	assert.Nil(t, ExtractArrayField(`{"plan":`, "plan"))
	assert.Nil(t, ExtractArrayField(`{"plan":"not an array"`, "plan"))
}

func TestExtractPartial(t *testing.T) {
	p := ExtractPartial(`{"thought":"working","plan":["step 1"],"finalAnswer":"alm`)
	assert.Equal(t, "working", p.Thought)
	assert.Equal(t, []string{"step 1"}, p.Plan)
	assert.Equal(t, "alm", p.FinalAnswer)
}
