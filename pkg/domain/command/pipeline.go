package command

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// Pipeline stages. Formatted and Aborted are terminal.
const (
	StageStart      = "start"
	StageClassified = "classified"
	StageExtracted  = "extracted"
	StageResolved   = "resolved"
	StageExecuted   = "executed"
	StageFormatted  = "formatted"
	StageAborted    = "aborted"
)

// Pipeline events.
const (
	EventClassify = "classify"
	EventExtract  = "extract"
	EventResolve  = "resolve"
	EventExecute  = "execute"
	EventFormat   = "format"
	EventAbort    = "abort"
)

// PipelineContext carries per-run data visible to guards.
type PipelineContext struct {
	RequestID string
}

// Pipeline tracks the stage of one interpretation run. It is not safe for
// concurrent use; each request builds its own.
type Pipeline struct {
	interpreter *statekit.Interpreter[PipelineContext]
	abortedFrom string
}

// NewPipeline builds the stage machine
// start → classified → extracted → resolved → executed → formatted, with
// abort reachable from every non-terminal stage.
func NewPipeline(requestID string) (*Pipeline, error) {
	builder := statekit.NewMachine[PipelineContext]("pipeline").
		WithInitial(StageStart).
		WithContext(PipelineContext{RequestID: requestID})

	builder.State(StageStart).
		On(EventClassify).Target(StageClassified).
		On(EventAbort).Target(StageAborted).
		Done()

	builder.State(StageClassified).
		On(EventExtract).Target(StageExtracted).
		On(EventAbort).Target(StageAborted).
		Done()

	builder.State(StageExtracted).
		On(EventResolve).Target(StageResolved).
		On(EventAbort).Target(StageAborted).
		Done()

	builder.State(StageResolved).
		On(EventExecute).Target(StageExecuted).
		On(EventAbort).Target(StageAborted).
		Done()

	builder.State(StageExecuted).
		On(EventFormat).Target(StageFormatted).
		On(EventAbort).Target(StageAborted).
		Done()

	builder.State(StageFormatted).Done()
	builder.State(StageAborted).Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build pipeline machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &Pipeline{interpreter: interpreter}, nil
}

// Advance sends event and reports an error when the current stage does not
// accept it.
func (p *Pipeline) Advance(event string) error {
	before := p.Stage()
	p.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	if p.Stage() != before {
		return nil
	}
	return fmt.Errorf("pipeline cannot %s from stage %s", event, before)
}

// Abort moves the run to the aborted stage, remembering where it stopped.
// Aborting twice is a no-op.
func (p *Pipeline) Abort() {
	if p.IsTerminal() {
		return
	}
	p.abortedFrom = p.Stage()
	_ = p.Advance(EventAbort)
}

// Stage returns the current stage.
func (p *Pipeline) Stage() string {
	return string(p.interpreter.State().Value)
}

// AbortedFrom returns the stage the run was in when it aborted, or "".
func (p *Pipeline) AbortedFrom() string {
	return p.abortedFrom
}

// IsTerminal reports whether the run has finished.
func (p *Pipeline) IsTerminal() bool {
	stage := p.Stage()
	return stage == StageFormatted || stage == StageAborted
}
