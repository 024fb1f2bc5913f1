package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlcond/where"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Success([]CompileResult{{File: "a.yaml", SQL: "a < 1 AND b <> 'x&y'"}}))
	assert.Contains(t, buf.String(), `"sql": "a < 1 AND b <> 'x&y'"`)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Error(ErrCodeTypeMismatch, "type mismatch", map[string]string{"file": "a.yaml"}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E105", resp.Error.Code)
	assert.Equal(t, "type mismatch", resp.Error.Message)
	assert.Equal(t, map[string]any{"file": "a.yaml"}, resp.Error.Details)
}

func TestOutputFormatter_Text(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Success("a = 1"))
	require.NoError(t, formatter.Error(ErrCodeInput, "bad input", nil))
	assert.Equal(t, "a = 1\nError [E003]: bad input\n", buf.String())
}

func TestExitError(t *testing.T) {
	err := WrapExitError(ExitCommandError, "load config", errors.New("boom"))
	assert.EqualError(t, err, "load config: boom")
	assert.Equal(t, ExitCommandError, GetExitCode(fmt.Errorf("run: %w", err)))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.EqualError(t, NewExitError(ExitFailure, "rejected"), "rejected")
}

func TestCompileErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&where.UnknownAttributeError{Attribute: "a"}, ErrCodeUnknownAttribute},
		{&where.UndefinedValueError{Key: "a"}, ErrCodeUndefinedValue},
		{&where.UnsupportedOperatorError{Op: where.Overlap, Feature: "array", Dialect: "mysql"}, ErrCodeUnsupported},
		{&where.OperatorArityError{Op: where.Between}, ErrCodeOperatorArity},
		{&where.TypeMismatchError{}, ErrCodeTypeMismatch},
		{&where.InvalidOperandKindError{}, ErrCodeInvalidOperandKind},
		{fmt.Errorf("sqlcond: condition 2: %w", &where.CompileError{Statement: where.Update, Err: &where.TypeMismatchError{}}), ErrCodeTypeMismatch},
		{errors.New("other"), ErrCodeGeneric},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, compileErrorCode(tt.err), tt.err.Error())
	}
}
