// Package session implements the Session Orchestrator: it drives one
// request end to end, emitting a strictly ordered stream of typed events
// over a bounded channel.
package session

import (
	"context"
	"regexp"

	"github.com/google/uuid"

	"github.com/opencity/insight/pkg/analyzer"
	"github.com/opencity/insight/pkg/apperror"
	"github.com/opencity/insight/pkg/artifact"
	"github.com/opencity/insight/pkg/catalog"
	"github.com/opencity/insight/pkg/cluster"
	"github.com/opencity/insight/pkg/events"
	"github.com/opencity/insight/pkg/llmclient"
	"github.com/opencity/insight/pkg/planner"
)

// Mode selects how a question is handled.
type Mode string

const (
	ModeAuto         Mode = "auto"
	ModeChat         Mode = "chat"
	ModeDeepAnalysis Mode = "deep_analysis"
)

// eventBufferSize bounds the SSE event channel between the orchestrator
// and the transport layer. A slow client naturally backpressures
// upstream LC/AS work rather than growing an unbounded queue.
const eventBufferSize = 16

// analysisToken matches the literal word "analysis" case-insensitively
// at a word boundary, the trigger for auto-mode confirmation.
var analysisToken = regexp.MustCompile(`(?i)\banalysis\b`)

// domainTokenPattern matches follow-up questions worth a cluster
// prediction in chat mode. Configurable in principle; a sensible
// default keyed to the kind of language that signals a clustering ask.
var domainTokenPattern = regexp.MustCompile(`(?i)\b(cluster|pattern|trend|similar|compare|category|segment)\w*\b`)

// assistantPersonaPrompt is prefixed to every chat-mode LC call.
const assistantPersonaPrompt = "You are a concise analytics assistant. Answer the user's question directly in a sentence or two.\n\nQuestion: "

// Orchestrator wires together the components a Session needs: it is
// built once at startup and shared read-mostly across Sessions, each of
// which owns its own event channel exclusively.
type Orchestrator struct {
	planner   *planner.Planner
	analyzer  *analyzer.Analyzer
	predictor *cluster.Predictor
	artifacts *artifact.Store
	catalog   *catalog.Catalog
	llm       llmclient.Client
	audit     *events.AuditStore
}

// New builds an Orchestrator. audit may be nil to disable best-effort
// event persistence.
func New(p *planner.Planner, a *analyzer.Analyzer, cp *cluster.Predictor, as *artifact.Store, cat *catalog.Catalog, llm llmclient.Client, audit *events.AuditStore) *Orchestrator {
	return &Orchestrator{
		planner:   p,
		analyzer:  a,
		predictor: cp,
		artifacts: as,
		catalog:   cat,
		llm:       llm,
		audit:     audit,
	}
}

// Run starts one Session for question under mode and returns its event
// channel. The channel is closed after a terminal event (complete or
// error) is sent, after the confirmation event in auto mode, or as soon
// as ctx is observed cancelled. The caller must
// drain the channel until it closes.
func (o *Orchestrator) Run(ctx context.Context, sessionID uuid.UUID, question string, mode Mode) <-chan events.Event {
	out := make(chan events.Event, eventBufferSize)
	go o.drive(ctx, sessionID, question, mode, out)
	return out
}

func (o *Orchestrator) drive(ctx context.Context, sessionID uuid.UUID, question string, mode Mode, out chan<- events.Event) {
	defer close(out)
	seq := 0
	emit := func(e events.Event) bool {
		select {
		case out <- e:
		case <-ctx.Done():
			return false
		}
		if o.audit != nil {
			o.audit.RecordAsync(context.Background(), sessionID, seq, e)
		}
		seq++
		return true
	}

	if !emit(events.User(question)) {
		return
	}

	resolved := mode
	if mode == ModeAuto {
		if analysisToken.MatchString(question) {
			emit(events.Confirmation("Deep analysis?"))
			return
		}
		resolved = ModeChat
	}

	switch resolved {
	case ModeDeepAnalysis:
		o.runDeepAnalysis(ctx, question, emit)
	default:
		o.runChat(ctx, question, emit)
	}
}

func (o *Orchestrator) runDeepAnalysis(ctx context.Context, question string, emit func(events.Event) bool) {
	if ctx.Err() != nil {
		return
	}
	if !emit(events.Thought("Planning")) {
		return
	}

	plan, err := o.planner.Plan(ctx, question)
	if err != nil {
		o.emitError(emit, err)
		return
	}
	entries := make([]events.PlanEntryData, 0, len(plan.Entries))
	for _, e := range plan.Entries {
		entries = append(entries, events.PlanEntryData{ProductID: e.ProductID, Reason: e.Reason})
	}
	if !emit(events.Plan(entries)) {
		return
	}

	var log analyzer.AccessLog
	var summaries []artifact.Summary
	navigated := false

	for _, e := range plan.Entries {
		if ctx.Err() != nil {
			return
		}
		if !emit(events.Thought("Loading " + e.ProductID)) {
			return
		}

		product, err := o.catalog.Get(e.ProductID)
		if err != nil {
			o.emitError(emit, err)
			return
		}

		summary, err := o.artifacts.LoadSummary(product)
		if err != nil {
			o.emitError(emit, err)
			return
		}

		summaries = append(summaries, summary)
		log = append(log, analyzer.AccessEntry{
			ProductID: e.ProductID,
			Rows:      summary.Shape[0],
			Columns:   summary.Shape[1],
		})

		if !navigated && product.RouteHint != "" {
			if !emit(events.Navigation(product.RouteHint)) {
				return
			}
			navigated = true
		}
	}

	if ctx.Err() != nil {
		return
	}
	if !emit(events.Thought("Analyzing")) {
		return
	}

	result, err := o.analyzer.Analyze(ctx, question, log, summaries)
	if err != nil {
		o.emitError(emit, err)
		return
	}
	if !emit(events.Answer(result.Answer, result.Rationale, result.KeyMetrics)) {
		return
	}

	if o.predictor != nil {
		if ctx.Err() != nil {
			return
		}
		if pred, err := o.predictor.Predict(ctx, question); err == nil {
			if !emit(events.ClusterPrediction(pred.ParentID, pred.ChildID, pred.Confidence)) {
				return
			}
		}
	}

	emit(events.Complete())
}

func (o *Orchestrator) runChat(ctx context.Context, question string, emit func(events.Event) bool) {
	if domainTokenPattern.MatchString(question) && o.predictor != nil {
		if ctx.Err() != nil {
			return
		}
		if pred, err := o.predictor.Predict(ctx, question); err == nil {
			if !emit(events.ClusterPrediction(pred.ParentID, pred.ChildID, pred.Confidence)) {
				return
			}
			if !emit(events.GlowOn()) {
				return
			}
		}
	}

	if ctx.Err() != nil {
		return
	}
	reply, err := o.llm.GenerateText(ctx, assistantPersonaPrompt+question)
	if err != nil {
		o.emitError(emit, err)
		return
	}
	if !emit(events.Chat(reply)) {
		return
	}

	emit(events.Complete())
}

func (o *Orchestrator) emitError(emit func(events.Event) bool, err error) {
	kind := "LLMParseError"
	if aerr, ok := err.(*apperror.Error); ok {
		kind = string(aerr.Kind)
	}
	emit(events.Error(kind, err.Error()))
}
