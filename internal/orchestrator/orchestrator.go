package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/entity"
	"go.uber.org/zap"
)

const systemPrompt = `You are an AI assistant specialized in course materials and educational content with access to search tools for course information.

Available Tools:
- **search_course_content**: For searching specific course content and educational materials
- **get_course_outline**: For retrieving course structure (title, instructor, course link, and complete lesson list)

Tool Usage Guidelines:
- **Sequential tool usage**: You may make multiple rounds of tool calls per user query
- **Round 1**: Make initial tool calls to gather information
- **Later rounds**: Make additional tool calls if needed to refine or expand on initial results
- **Content questions**: Use search_course_content for questions about specific topics, concepts, or detailed course materials
- **Outline questions**: Use get_course_outline for questions about course structure, lesson lists, or course overview
- **Comparison queries**: First search for one item, then search for another to compare
- Synthesize all tool results into accurate, fact-based responses
- If tools yield no results, state this clearly without offering alternatives

Response Protocol:
- **General knowledge questions**: Answer using existing knowledge without searching
- **Course-specific questions**: Use the appropriate tools, then answer
- **Outline requests**: Always include the course title, course link, and complete lesson breakdown with numbers and titles
- **No meta-commentary**: Provide direct answers only. Do not mention "based on the search results" or "using the tool".

All responses must be brief, clear and educational. Provide only the direct answer to what was asked.`

// roundState is the only mutable counter of the tool loop. A round is one
// executed batch of tool calls; the loop may not start more rounds than the
// configured maximum.
type roundState struct {
	maxRounds int
	round     int
}

func newRoundState(maxRounds int) *roundState {
	if maxRounds < 1 {
		maxRounds = 1
	}
	return &roundState{maxRounds: maxRounds}
}

func (s *roundState) canContinue() bool {
	return s.round < s.maxRounds
}

func (s *roundState) advance() {
	s.round++
}

// Orchestrator drives the tool-use conversation with the model: send the
// transcript plus tool definitions, execute any requested tools, feed the
// results back, and repeat until the model answers or the round limit is
// reached. When the limit cuts the loop short a final call without tools
// forces a plain answer.
type Orchestrator struct {
	llm       LLMConnector
	tools     ToolExecutor
	maxRounds int
	logger    *zap.Logger
}

func New(llm LLMConnector, tools ToolExecutor, maxRounds int, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		llm:       llm,
		tools:     tools,
		maxRounds: maxRounds,
		logger:    logger,
	}
}

// Respond produces the answer to one user query. Prior exchanges are folded
// into the system prompt. Tool failures are reported to the model as error
// results and never abort the query; a failed model call does, wrapped in
// ErrGenerationFailed.
func (o *Orchestrator) Respond(ctx context.Context, query string, history []entity.Exchange) (string, []entity.Source, error) {
	system := systemPrompt
	if len(history) > 0 {
		system = systemPrompt + "\n\nPrevious conversation:\n" + formatHistory(history)
	}

	definitions := o.tools.Definitions()
	messages := []entity.ChatMessage{entity.UserMessage(entity.TextBlock(query))}

	response, err := o.llm.Generate(ctx, &entity.ChatRequest{
		System:   system,
		Messages: messages,
		Tools:    definitions,
	})
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", entity.ErrGenerationFailed, err)
	}

	rounds := newRoundState(o.maxRounds)
	var sources []entity.Source

	for rounds.canContinue() && response.StopReason == entity.StopToolUse {
		results, roundSources := o.executeRound(ctx, response)
		rounds.advance()
		sources = append(sources, roundSources...)

		messages = append(messages, entity.AssistantMessage(response.Content...))
		if len(results) > 0 {
			messages = append(messages, entity.UserMessage(results...))
		}

		if !rounds.canContinue() {
			response = nil
			break
		}

		response, err = o.llm.Generate(ctx, &entity.ChatRequest{
			System:   system,
			Messages: messages,
			Tools:    definitions,
		})
		if err != nil {
			return "", nil, fmt.Errorf("%w: %v", entity.ErrGenerationFailed, err)
		}
	}

	if response != nil && response.StopReason != entity.StopToolUse {
		ctxzap.Info(ctx, "query answered",
			zap.Int("tool_rounds", rounds.round),
			zap.Int("source_count", len(sources)))
		return response.Text(), sources, nil
	}

	// Round limit reached with the model still asking for tools.
	final, err := o.llm.Generate(ctx, &entity.ChatRequest{
		System:   system,
		Messages: messages,
	})
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", entity.ErrGenerationFailed, err)
	}

	ctxzap.Info(ctx, "query answered after forced final call",
		zap.Int("tool_rounds", rounds.round),
		zap.Int("source_count", len(sources)))
	return final.Text(), sources, nil
}

// executeRound runs every tool call of the response in the order requested.
// A failed call becomes an is_error result so the model can recover inside
// the conversation.
func (o *Orchestrator) executeRound(ctx context.Context, response *entity.ChatResponse) ([]entity.ContentBlock, []entity.Source) {
	var results []entity.ContentBlock
	var sources []entity.Source

	for _, use := range response.ToolUses() {
		output, toolSources, err := o.tools.Execute(ctx, use.Name, use.Input)
		if err != nil {
			ctxzap.Warn(ctx, "tool execution failed",
				zap.String("tool", use.Name),
				zap.Error(err))
			results = append(results, entity.ToolResultBlock(use.ID, fmt.Sprintf("Tool execution error: %v", err), true))
			continue
		}
		results = append(results, entity.ToolResultBlock(use.ID, output, false))
		sources = append(sources, toolSources...)

		ctxzap.Debug(ctx, "tool executed",
			zap.String("tool", use.Name),
			zap.Int("source_count", len(toolSources)))
	}
	return results, sources
}

func formatHistory(history []entity.Exchange) string {
	var out strings.Builder
	for i, exchange := range history {
		if i > 0 {
			out.WriteString("\n")
		}
		fmt.Fprintf(&out, "User: %s\nAssistant: %s", exchange.Query, exchange.Answer)
	}
	return out.String()
}
