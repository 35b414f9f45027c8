package agent

import (
	"context"

	"github.com/tmc/langchaingo/callbacks"
	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/researchcast/graph"
	"github.com/smallnest/researchcast/log"
)

func newLoggingHook(logger log.Logger) graph.TraceHook {
	return graph.TraceHookFunc(func(ctx context.Context, span *graph.TraceSpan) {
		runID := ""
		if cfg := graph.GetConfig(ctx); cfg != nil {
			runID = cfg.RunID
		}

		switch span.Event {
		case graph.TraceEventNodeStart:
			logger.Info("[%s] %s started", runID, span.NodeName)
		case graph.TraceEventNodeEnd:
			logger.Info("[%s] %s finished in %s", runID, span.NodeName, span.Duration)
		case graph.TraceEventNodeError:
			logger.Error("[%s] %s failed after %s: %v", runID, span.NodeName, span.Duration, span.Error)
		case graph.TraceEventEdgeTraversal:
			logger.Debug("[%s] %s -> %s", runID, span.FromNode, span.ToNode)
		}
	})
}

// llmLogHandler logs model calls at debug level.
type llmLogHandler struct {
	callbacks.SimpleHandler
	logger log.Logger
}

var _ callbacks.Handler = llmLogHandler{}

func newLLMLogHandler(logger log.Logger) llmLogHandler {
	return llmLogHandler{logger: logger}
}

func (h llmLogHandler) HandleLLMGenerateContentStart(_ context.Context, ms []llms.MessageContent) {
	h.logger.Debug("llm call with %d messages", len(ms))
}

func (h llmLogHandler) HandleLLMGenerateContentEnd(_ context.Context, res *llms.ContentResponse) {
	if res == nil || len(res.Choices) == 0 {
		return
	}
	info := res.Choices[0].GenerationInfo
	h.logger.Debug("llm call done: %d chars, %v total tokens", len(res.Choices[0].Content), info["total_tokens"])
}

func (h llmLogHandler) HandleLLMError(_ context.Context, err error) {
	h.logger.Warn("llm call failed: %v", err)
}
