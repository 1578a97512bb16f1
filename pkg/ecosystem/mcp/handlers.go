package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ormasoftchile/ucrepl/pkg/prompt"
	"github.com/ormasoftchile/ucrepl/pkg/repl"
	"github.com/ormasoftchile/ucrepl/pkg/usecase"
)

// HandleList implements the ucrepl_list tool: one line per use case,
// "<tool> <label>".
func HandleList(entries []usecase.Entry, groupBy string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var b strings.Builder
		for i, c := range repl.Choices(entries, groupBy) {
			fmt.Fprintf(&b, "%s\t%s\n", ToolName(i, entries[i]), c.Label)
		}
		return textResult(b.String()), nil
	}
}

// HandleUseCase implements a use case tool: coerce arguments, authorize,
// run, report. A denied or failed use case is an error result; only
// broken requests to the use case itself surface as Go errors.
func HandleUseCase(name string, uc usecase.UseCase, identity usecase.Identity, logger *zap.Logger) server.ToolHandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		log := logger.With(zap.String("tool", name), zap.String("run_id", uuid.NewString()))

		answers, err := coerceArguments(prompt.Derive(uc.RequestSchema()), req.GetArguments())
		if err != nil {
			return errorResult(err.Error()), nil
		}

		allowed, err := uc.Authorize(ctx, identity)
		if err != nil {
			return errorResult(fmt.Sprintf("authorize: %s", err)), nil
		}
		if !allowed {
			log.Info("use case denied")
			return errorResult(repl.MsgAccessDenied), nil
		}

		start := time.Now()
		result, err := uc.Run(ctx, answers)
		if err != nil {
			log.Warn("use case run failed", zap.Error(err))
			return errorResult(fmt.Sprintf("run: %s", err)), nil
		}
		log.Info("use case finished", zap.Bool("ok", result.OK), zap.Duration("duration", time.Since(start)))

		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return nil, errors.Wrap(err, "encode result")
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{mcp.NewTextContent(string(data))},
			IsError: !result.OK,
		}, nil
	}
}

// coerceArguments builds answers in schema order. JSON numbers and booleans
// are taken as is; strings go through the prompt parsing rules.
func coerceArguments(specs []prompt.Spec, args map[string]any) (*usecase.Answers, error) {
	answers := usecase.NewAnswers()
	for _, spec := range specs {
		raw, ok := args[spec.Name]
		if !ok {
			return nil, errors.Newf("%s argument is required", spec.Name)
		}
		v, err := coerce(spec.Kind, raw)
		if err != nil {
			return nil, errors.Wrapf(err, "argument %s", spec.Name)
		}
		answers.Set(spec.Name, v)
	}
	return answers, nil
}

func coerce(kind prompt.Kind, raw any) (any, error) {
	switch v := raw.(type) {
	case string:
		return prompt.Parse(kind, v)
	case float64:
		if kind == prompt.KindText {
			return strconv.FormatFloat(v, 'f', -1, 64), nil
		}
		if kind == prompt.KindConfirm {
			return nil, prompt.ErrInvalidConfirm
		}
		return v, nil
	case bool:
		switch kind {
		case prompt.KindConfirm:
			return v, nil
		case prompt.KindText:
			return strconv.FormatBool(v), nil
		}
		return nil, prompt.ErrInvalidNumber
	case nil:
		return nil, errors.New("value is null")
	}
	return nil, errors.Newf("unsupported value %T", raw)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(msg),
		},
		IsError: true,
	}
}
