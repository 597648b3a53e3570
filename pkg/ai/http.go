package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// maxErrorBody bounds how much of an error response is quoted back.
const maxErrorBody = 512

// postJSON sends payload to url and decodes a 200 response into out.
func postJSON(ctx context.Context, client *http.Client, vendor, url string, headers map[string]string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", vendor, err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on read body

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if len(snippet) > 0 {
			return fmt.Errorf("%s API returned status: %s: %s", vendor, resp.Status, bytes.TrimSpace(snippet))
		}
		return fmt.Errorf("%s API returned status: %s", vendor, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", vendor, err)
	}
	return nil
}

// jsonInstruction is appended to the system prompt of providers without a
// native JSON mode.
func jsonInstruction(system string, schema []byte) string {
	instr := "Responde únicamente con un objeto JSON válido, sin texto adicional."
	if len(schema) > 0 {
		instr += "\nEsquema JSON esperado:\n" + string(schema)
	}
	if system == "" {
		return instr
	}
	return system + "\n\n" + instr
}
