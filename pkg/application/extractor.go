package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/felixgeelhaar/dictado/pkg/domain/ai"
	"github.com/felixgeelhaar/dictado/pkg/domain/command"
	"github.com/felixgeelhaar/dictado/pkg/domain/language"
)

// Extraction is the outcome of slot extraction.
type Extraction struct {
	Slots command.SlotSet `json:"slots"`
	// ModelSlots lists the slots taken from the model's answer.
	ModelSlots []command.Slot `json:"model_slots,omitempty"`
	// Rules lists the pattern rules that filled a slot.
	Rules []string `json:"rules,omitempty"`
}

var slotHints = map[command.Slot]string{
	command.SlotTitle:            "título corto del registro a crear o nuevo título",
	command.SlotDescription:      "descripción explícita, si la hay",
	command.SlotStatus:           "pending, in_progress, blocked o done",
	command.SlotPriority:         "low, medium o high",
	command.SlotDueDate:          "fecha límite en formato YYYY-MM-DD",
	command.SlotReferenceText:    "texto con el que el usuario nombra el registro a modificar o buscar",
	command.SlotProjectReference: "nombre del proyecto mencionado",
}

// SlotExtractor fills the declared slots of an intent. The model's answer
// is taken first when available and valid; the pattern rules fill what it
// left absent, then create defaults apply.
type SlotExtractor struct {
	provider ai.Provider
	logger   *slog.Logger

	mu      sync.Mutex
	schemas map[command.Intent]*slotSchema
}

type slotSchema struct {
	raw    string
	schema *gojsonschema.Schema
	slots  []command.Slot
}

// NewSlotExtractor creates an extractor. provider may be nil.
func NewSlotExtractor(provider ai.Provider, logger *slog.Logger) *SlotExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlotExtractor{
		provider: provider,
		logger:   logger,
		schemas:  make(map[command.Intent]*slotSchema),
	}
}

// Extract never fails; slots that nothing could fill stay absent.
func (e *SlotExtractor) Extract(ctx context.Context, intent command.Intent, raw string, ref time.Time) Extraction {
	var out Extraction
	if len(command.DeclaredSlots(intent)) == 0 {
		return out
	}

	if e.provider != nil && strings.TrimSpace(raw) != "" {
		slots, filled, err := e.extractWithModel(ctx, intent, raw, ref)
		if err != nil {
			e.logger.Warn("model extraction failed, using pattern rules",
				"provider", e.provider.ID(), "intent", intent, "error", err)
		} else {
			out.Slots = slots
			out.ModelSlots = filled
		}
	}

	out.Rules = command.ExtractSlots(intent, raw, ref, &out.Slots)
	command.ApplyDefaults(intent, &out.Slots, raw, ref)
	out.Slots = out.Slots.Restrict(intent)
	return out
}

func (e *SlotExtractor) extractWithModel(ctx context.Context, intent command.Intent, raw string, ref time.Time) (command.SlotSet, []command.Slot, error) {
	var slots command.SlotSet
	schema, err := e.schemaFor(intent)
	if err != nil {
		return slots, nil, err
	}

	system := fmt.Sprintf(`Extrae los campos de una orden en español para la intención %s.
Hoy es %s. Devuelve un objeto JSON con estas claves, usando null cuando el texto no indique el valor:
%s
No inventes valores.`, intent, ref.Format(language.ISODate), describeSlots(schema.slots))

	payload, err := completeJSON(ctx, e.provider, system, strings.TrimSpace(raw), schema.schema, schema.raw)
	if err != nil {
		return slots, nil, err
	}

	var values map[string]*string
	if err := json.Unmarshal([]byte(payload), &values); err != nil {
		return slots, nil, fmt.Errorf("decode extraction: %w", err)
	}

	var filled []command.Slot
	for _, slot := range schema.slots {
		v := values[string(slot)]
		if v == nil {
			continue
		}
		if slots.Set(slot, *v, ref) {
			filled = append(filled, slot)
		} else {
			e.logger.Debug("discarding invalid model slot", "slot", slot, "value", *v)
		}
	}
	return slots, filled, nil
}

// schemaFor builds, once per intent, the JSON schema of the model answer.
// projectId only ever comes from the caller.
func (e *SlotExtractor) schemaFor(intent command.Intent) (*slotSchema, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.schemas[intent]; ok {
		return s, nil
	}

	props := map[string]any{}
	var slots []command.Slot
	for _, slot := range command.DeclaredSlots(intent) {
		if slot == command.SlotProjectID {
			continue
		}
		slots = append(slots, slot)
		props[string(slot)] = map[string]any{"type": []string{"string", "null"}}
	}
	data, err := json.Marshal(map[string]any{
		"$schema":    "http://json-schema.org/draft-07/schema#",
		"type":       "object",
		"properties": props,
	})
	if err != nil {
		return nil, err
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("build %s schema: %w", intent, err)
	}

	s := &slotSchema{raw: string(data), schema: schema, slots: slots}
	e.schemas[intent] = s
	return s, nil
}

func describeSlots(slots []command.Slot) string {
	var b strings.Builder
	for _, slot := range slots {
		fmt.Fprintf(&b, "- %s: %s\n", slot, slotHints[slot])
	}
	return strings.TrimRight(b.String(), "\n")
}
