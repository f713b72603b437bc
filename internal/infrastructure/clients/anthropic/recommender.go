package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/zatekoja/providermatch/internal/domain/providers"
	"github.com/zatekoja/providermatch/pkg/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	defaultModel     = "claude-haiku-4-5-20251001"
	defaultMaxTokens = 32
	requestTimeout   = 10 * time.Second
)

// Recommender maps symptoms to a specialty label with the Anthropic Messages API
type Recommender struct {
	client sdk.Client
	model  string
}

// NewRecommender creates a recommender. Extra options are appended after the API key.
func NewRecommender(cfg *config.RecommenderConfig, opts ...option.RequestOption) (*Recommender, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("anthropic api key is required")
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	reqOpts := append([]option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(requestTimeout),
	}, opts...)

	return &Recommender{
		client: sdk.NewClient(reqOpts...),
		model:  model,
	}, nil
}

// RecommendSpecialty returns an uppercase specialty label, or "" when the model declines
func (r *Recommender) RecommendSpecialty(ctx context.Context, req providers.SpecialtyRequest) (string, error) {
	ctx, span := otel.Tracer("providermatch/anthropic").Start(ctx, "Recommender.RecommendSpecialty")
	defer span.End()

	symptoms := strings.TrimSpace(req.Symptoms)
	if symptoms == "" {
		return "", nil
	}

	msg, err := r.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(r.model),
		MaxTokens: defaultMaxTokens,
		System:    []sdk.TextBlockParam{{Text: recommendSystemPrompt}},
		Messages:  []sdk.MessageParam{sdk.NewUserMessage(sdk.NewTextBlock(buildPrompt(req)))},
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("anthropic: recommend specialty: %w", err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	label := parseLabel(text.String())
	span.SetAttributes(attribute.String("specialty.recommended", label))
	return label, nil
}

func buildPrompt(req providers.SpecialtyRequest) string {
	var b strings.Builder
	b.WriteString("Symptoms: ")
	b.WriteString(strings.TrimSpace(req.Symptoms))
	if req.Age != nil {
		fmt.Fprintf(&b, "\nAge: %d", *req.Age)
	}
	if g := strings.TrimSpace(req.Gender); g != "" {
		b.WriteString("\nGender: ")
		b.WriteString(g)
	}
	return b.String()
}

func parseLabel(raw string) string {
	line := strings.TrimSpace(raw)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	line = strings.Trim(line, " .\"'`*")
	label := strings.ToUpper(strings.Join(strings.Fields(line), " "))
	if label == noRecommendation {
		return ""
	}
	return label
}
