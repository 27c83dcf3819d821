package ai

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kapu/name-bender-go/internal/prompt"
	apperrors "github.com/kapu/name-bender-go/pkg/errors"
)

type fakeModel struct {
	jsonText   string
	text       string
	err        error
	lastPrompt string
	lastOpts   *GenerateOptions
}

func (f *fakeModel) GenerateJSON(_ context.Context, p string, _ ModelPreset, dest any, opts *GenerateOptions) (*GenerateMetadata, error) {
	f.lastPrompt = p
	f.lastOpts = opts
	if f.err != nil {
		return nil, f.err
	}
	if err := json.Unmarshal([]byte(f.jsonText), dest); err != nil {
		return nil, err
	}
	return &GenerateMetadata{Provider: "fake"}, nil
}

func (f *fakeModel) GenerateText(_ context.Context, p string, _ ModelPreset, opts *GenerateOptions) (string, *GenerateMetadata, error) {
	f.lastPrompt = p
	f.lastOpts = opts
	if f.err != nil {
		return "", nil, f.err
	}
	return f.text, &GenerateMetadata{Provider: "fake"}, nil
}

func TestGenerateNormalizesNames(t *testing.T) {
	model := &fakeModel{jsonText: `{"domains":["Bottom Up","zen.io","  ", "ALPHA"]}`}
	gen := NewGenerator(model, nil, zap.NewNop())

	names, err := gen.Generate(context.Background(), "a startup", []string{"bottomup"})
	require.NoError(t, err)
	assert.Equal(t, []string{"bottomup", "zenio", "alpha"}, names)
	assert.Contains(t, model.lastPrompt, "not on this list: bottomup")
	assert.Equal(t, prompt.DomainNameSystemInstruction, model.lastOpts.SystemInstruction)
	assert.NotNil(t, model.lastOpts.ResponseSchema)
}

func TestGenerateFailureIsGenerationError(t *testing.T) {
	gen := NewGenerator(&fakeModel{err: errors.New("boom")}, nil, zap.NewNop())

	_, err := gen.Generate(context.Background(), "a startup", nil)
	var genErr *apperrors.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, MsgGenerateFailed, genErr.UserMessage())

	_, err = gen.GenerateAlternatives(context.Background(), "zen")
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, MsgAlternativesFailed, genErr.UserMessage())
}

func TestGenerateAlternatives(t *testing.T) {
	model := &fakeModel{jsonText: `{"domains":["Zenly","zen hub","zenora"]}`}
	names, err := NewGenerator(model, nil, zap.NewNop()).GenerateAlternatives(context.Background(), "zen")
	require.NoError(t, err)
	assert.Equal(t, []string{"zenly", "zenhub", "zenora"}, names)
	assert.Contains(t, model.lastPrompt, `"zen" is taken`)
}

func TestGenerateQuote(t *testing.T) {
	model := &fakeModel{text: "\nStay hungry, stay foolish.\n— Stewart Brand\nextra\n"}
	quote := NewGenerator(model, nil, zap.NewNop()).GenerateQuote(context.Background(), "a bakery")
	assert.Equal(t, "Stay hungry, stay foolish.\n— Stewart Brand", quote)
}

func TestGenerateQuoteFallsBack(t *testing.T) {
	gen := NewGenerator(&fakeModel{err: errors.New("down")}, nil, zap.NewNop())
	assert.Equal(t, prompt.FallbackQuote, gen.GenerateQuote(context.Background(), "x"))

	gen = NewGenerator(&fakeModel{text: "   "}, nil, zap.NewNop())
	assert.Equal(t, prompt.FallbackQuote, gen.GenerateQuote(context.Background(), "x"))
}
