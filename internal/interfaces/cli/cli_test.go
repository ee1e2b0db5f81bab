package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearclaim/clearclaim/internal/domain/decision"
	"github.com/clearclaim/clearclaim/pkg/errors"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestUnderstandCommand(t *testing.T) {
	out, err := runCommand(t, "understand",
		"Knee surgery for a 45-year-old male with a 3-month-old premium policy")
	require.NoError(t, err)

	var u map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &u))
	assert.Contains(t, u, "attributes")
	assert.Contains(t, u, "validation")
	assert.Contains(t, u, "expansion")
}

func TestDecideCommandWithoutPassages(t *testing.T) {
	out, err := runCommand(t, "decide",
		"Knee surgery for a 45-year-old male with a 3-month-old premium policy")
	require.NoError(t, err)

	var rec decision.Record
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, decision.StatusApproved, rec.Status)
	assert.Len(t, rec.Chains, 4)
}

func TestDecideCommandWithPassagesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "passages.json")
	raw, err := json.Marshal([]decision.Passage{
		{SourceID: "policy-1", Text: "Knee surgery is covered and eligible for reimbursement under this plan."},
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	out, err := runCommand(t, "decide", "--passages", path,
		"Knee surgery for a 45-year-old male with a 3-month-old premium policy")
	require.NoError(t, err)

	var rec decision.Record
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, decision.StatusApproved, rec.Status)
	require.NotEmpty(t, rec.Clauses)
	assert.Equal(t, "policy-1#c0", rec.Clauses[0].ID)
}

func TestDecideCommandRejectsEmptyQuery(t *testing.T) {
	_, err := runCommand(t, "decide", "   ")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeQueryEmpty))
}

func TestLoadPassagesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "passages.yaml")
	content := "- source_id: policy-1\n  text: Knee surgery is covered for adults.\n" +
		"- source_id: policy-2\n  text: Cosmetic surgery is excluded from coverage.\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	passages, err := loadPassages(path)
	require.NoError(t, err)
	require.Len(t, passages, 2)
	assert.Equal(t, "policy-1", passages[0].SourceID)
	assert.Equal(t, "Cosmetic surgery is excluded from coverage.", passages[1].Text)
}

func TestLoadPassagesMissingFile(t *testing.T) {
	_, err := loadPassages(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))
}

func TestLoadPassagesMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := loadPassages(path)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeSerialization))
}

func TestLoadPassagesEmptyList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o600))

	_, err := loadPassages(path)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeEvidenceNoPassages))
}

func TestLoadPassagesRejectsBlankEntry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blank.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"source_id":"a","text":""}]`), 0o600))

	_, err := loadPassages(path)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeEvidenceMapping))
}

func TestPrintJSONIndents(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, printJSON(buf, map[string]string{"status": "approved"}))
	assert.Equal(t, "{\n  \"status\": \"approved\"\n}\n", buf.String())
}
