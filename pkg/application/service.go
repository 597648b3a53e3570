package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/dictado/pkg/domain/ai"
	"github.com/felixgeelhaar/dictado/pkg/domain/command"
	"github.com/felixgeelhaar/dictado/pkg/domain/planning"
)

// Request is one utterance to interpret.
type Request struct {
	Text string `json:"text"`
	// IntentHint, when valid, skips classification.
	IntentHint command.Intent `json:"intent,omitempty"`
	// ProjectIDHint names the project a task command refers to.
	ProjectIDHint string `json:"project_id,omitempty"`
	// Snapshot is the view of the store to interpret against. When nil it
	// is loaded from the store.
	Snapshot *planning.Snapshot `json:"-"`
}

// ServiceConfig tunes the pipeline. Zero values take defaults.
type ServiceConfig struct {
	SearchLimit  int
	ListPreview  int
	StoreTimeout time.Duration
	Location     *time.Location
	// Now returns the reference instant; time.Now when nil.
	Now func() time.Time
}

// CommandService runs the interpretation pipeline: classify, extract,
// resolve, execute, format. Each request gets its own pipeline and nothing
// is kept between requests.
type CommandService struct {
	store      planning.Store
	classifier *IntentClassifier
	extractor  *SlotExtractor
	executor   *CommandExecutor
	formatter  *command.Formatter
	cfg        ServiceConfig
	logger     *slog.Logger
}

// NewCommandService wires the pipeline. provider may be nil, which leaves
// only the pattern rules.
func NewCommandService(store planning.Store, provider ai.Provider, cfg ServiceConfig, logger *slog.Logger) *CommandService {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &CommandService{
		store:      store,
		classifier: NewIntentClassifier(provider, logger),
		extractor:  NewSlotExtractor(provider, logger),
		executor:   NewCommandExecutor(store, cfg.SearchLimit, cfg.StoreTimeout, logger),
		formatter:  command.NewFormatter(cfg.ListPreview),
		cfg:        cfg,
		logger:     logger,
	}
}

// ProcessTranscript interprets text and applies it to the store. It never
// returns an error: every failure is a CommandResult with Success false.
func (s *CommandService) ProcessTranscript(ctx context.Context, req Request) (result command.CommandResult) {
	requestID := uuid.NewString()
	log := s.logger.With("request_id", requestID)
	intent := command.IntentAssistance

	pipeline, err := command.NewPipeline(requestID)
	if err != nil {
		return s.fail(intent, command.SlotSet{}, err)
	}

	var slots command.SlotSet
	defer func() {
		if r := recover(); r != nil {
			log.Error("pipeline panic", "stage", pipeline.Stage(), "panic", r)
			pipeline.Abort()
			result = s.fail(intent, slots, fmt.Errorf("panic: %v", r))
		}
	}()

	ref := s.cfg.Now().In(s.cfg.Location)
	abort := func(err error) command.CommandResult {
		pipeline.Abort()
		res := s.fail(intent, slots, err)
		log.Info("command aborted", "intent", intent, "stage", pipeline.AbortedFrom(), "error_kind", res.ErrorKind)
		log.Debug("abort detail", "error", err)
		return res
	}
	advance := func(event string) {
		if err := pipeline.Advance(event); err != nil {
			panic(err)
		}
		log.Debug("pipeline stage", "stage", pipeline.Stage())
	}

	classification := s.classify(ctx, req)
	intent = classification.Intent
	advance(command.EventClassify)
	log.Debug("classified", "intent", intent, "source", classification.Source, "rule", classification.Rule)

	extraction := s.extractor.Extract(ctx, intent, req.Text, ref)
	slots = extraction.Slots
	if req.ProjectIDHint != "" && command.Declares(intent, command.SlotProjectID) {
		slots.Set(command.SlotProjectID, req.ProjectIDHint, ref)
	}
	advance(command.EventExtract)
	log.Debug("extracted", "slots", slots.String(), "rules", extraction.Rules, "model_slots", extraction.ModelSlots)

	snapshot, err := s.snapshot(ctx, req)
	if err != nil {
		return abort(err)
	}
	resolution, err := ResolveEntities(intent, slots, snapshot)
	if err != nil {
		return abort(err)
	}
	advance(command.EventResolve)

	result, err = s.executor.Execute(ctx, intent, slots, resolution, snapshot, ref)
	if err != nil {
		return abort(err)
	}
	if classification.Ambiguous() {
		result.ErrorKind = command.ErrorClassificationAmbiguous
	}
	advance(command.EventExecute)

	result.Message = s.formatter.Format(result)
	advance(command.EventFormat)
	log.Info("command processed", "intent", intent, "action", result.Action)
	return result
}

func (s *CommandService) classify(ctx context.Context, req Request) Classification {
	if req.IntentHint.IsValid() {
		return Classification{Intent: req.IntentHint, Source: SourceHint}
	}
	if strings.TrimSpace(req.Text) == "" {
		return Classification{Intent: command.IntentAssistance, Source: SourceFallback}
	}
	return s.classifier.Classify(ctx, req.Text)
}

func (s *CommandService) snapshot(ctx context.Context, req Request) (planning.Snapshot, error) {
	if req.Snapshot != nil {
		return *req.Snapshot, nil
	}
	snap, err := withTimeout(ctx, s.cfg.storeTimeout(), func(ctx context.Context) (*planning.Snapshot, error) {
		snap, err := planning.LoadSnapshot(ctx, s.store)
		if err != nil {
			return nil, err
		}
		return &snap, nil
	})
	if err != nil {
		s.logger.Error("load snapshot failed", "error", err)
		return planning.Snapshot{}, &command.Failure{Kind: command.ErrorExternalServiceFailure, Err: fmt.Errorf("load snapshot: %w", err)}
	}
	return *snap, nil
}

func (s *CommandService) fail(intent command.Intent, slots command.SlotSet, err error) command.CommandResult {
	res := command.Failed(intent, err)
	res.Slots = slots
	res.Message = s.formatter.Format(res)
	return res
}

func (c ServiceConfig) storeTimeout() time.Duration {
	if c.StoreTimeout <= 0 {
		return DefaultStoreTimeout
	}
	return c.StoreTimeout
}
