package llmservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog/log"

	"doc-chat/internal/apperr"
	"doc-chat/internal/config"
)

type mistralRequest struct {
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	TopK        int     `json:"top_k"`
}

type mistralResponse struct {
	Outputs []struct {
		Text       string `json:"text"`
		StopReason string `json:"stop_reason"`
	} `json:"outputs"`
}

// BedrockCompleter invokes a Mistral instruct model on AWS Bedrock.
type BedrockCompleter struct {
	client  *bedrockruntime.Client
	modelID string
	timeout time.Duration
}

func NewBedrockCompleter(ctx context.Context, cfg *config.BedrockConfig) (*BedrockCompleter, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &BedrockCompleter{
		client:  bedrockruntime.NewFromConfig(awsCfg),
		modelID: cfg.ModelID,
		timeout: timeout,
	}, nil
}

func (b *BedrockCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	body, err := json.Marshal(mistralRequest{
		Prompt:      fmt.Sprintf(instructionTemplate, prompt),
		MaxTokens:   MaxTokens,
		Temperature: Temperature,
		TopP:        TopP,
		TopK:        TopK,
	})
	if err != nil {
		return "", apperr.New(apperr.Unknown, err)
	}

	out, err := b.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(b.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return "", classifyBedrockError(err)
	}

	var resp mistralResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return "", apperr.Newf(apperr.Unknown, "unparseable bedrock response: %v", err)
	}

	var completion strings.Builder
	for _, o := range resp.Outputs {
		completion.WriteString(o.Text)
	}
	log.Debug().Str("model_id", b.modelID).Int("outputs", len(resp.Outputs)).Msg("Bedrock invoke done")
	return completion.String(), nil
}

func classifyBedrockError(err error) error {
	var throttled *types.ThrottlingException
	if errors.As(err, &throttled) {
		return apperr.New(apperr.ServiceThrottled, err)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apperr.New(apperr.ServiceRejected, err)
	}
	return apperr.New(apperr.Unknown, err)
}
