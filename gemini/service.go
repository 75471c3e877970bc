/*
service.go - Model operations: report, parsing, analysis, queries

PURPOSE:
  The four AI features of the application, each a single generateContent
  call with a strict JSON schema (except Query, which is free markdown).
  Prompts keep the original product persona and Vietnamese output.

TOKEN BUDGET:
  Transaction context is compressed before it reaches the model: type as a
  single letter, category truncated to 3 runes, date reduced to MM-DD,
  note to 15 runes. Limits per operation match the original service.
*/
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Tranvietnhattu/SMARTMONEY/cycle"
	"github.com/Tranvietnhattu/SMARTMONEY/ledger"
	"github.com/shopspring/decimal"
)

// ParsedEntry is the structured result of free-text transaction parsing.
type ParsedEntry struct {
	Amount   decimal.Decimal `json:"amount"`
	Type     string          `json:"type"` // "expense" | "income"
	Category string          `json:"category"`
	Note     string          `json:"note"`
}

// BehaviorAnalysis is the dashboard's spending-behavior forecast.
type BehaviorAnalysis struct {
	BehaviorInsight   string   `json:"behavior_insight"`
	RunOutDate        string   `json:"run_out_date"` // "YYYY-MM-DD" or "SAFE"
	ProjectionSummary string   `json:"projection_summary"`
	Causes            []string `json:"causes"`
	PreventiveActions []string `json:"preventive_actions"`
}

// =============================================================================
// CONTEXT COMPRESSION
// =============================================================================

type compressedTx struct {
	L string  `json:"l"` // T: thu (income), C: chi (expense)
	A float64 `json:"a"`
	C string  `json:"c"`
	D string  `json:"d"`
	N string  `json:"n,omitempty"`
}

func compressContext(txs []ledger.Transaction, limit int) []compressedTx {
	if len(txs) > limit {
		txs = txs[:limit]
	}
	out := make([]compressedTx, 0, len(txs))
	for _, t := range txs {
		letter := "C"
		if t.Type == ledger.TypeIncome {
			letter = "T"
		}
		day := ""
		if ts, err := ledger.ParseDate(t.Date); err == nil {
			day = ts.Format("01-02")
		}
		out = append(out, compressedTx{
			L: letter,
			A: t.Amount.InexactFloat64(),
			C: truncateRunes(string(t.Category), 3),
			D: day,
			N: truncateRunes(t.Note, 15),
		})
	}
	return out
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// =============================================================================
// CYCLE REPORT (cycle.Reporter implementation)
// =============================================================================

// GenerateCycleReport produces the close-of-cycle report. Implements
// cycle.Reporter. Cached by content fingerprint; the manager calls this at
// most once per rollover, the cache mainly covers manual re-triggers.
func (c *Client) GenerateCycleReport(ctx context.Context, txs []ledger.Transaction, prevSummary string) (*cycle.Report, error) {
	key := "report-" + fingerprint(txs)
	text, ok := c.reports.get(key)
	if !ok {
		if prevSummary == "" {
			prevSummary = "N/A"
		}
		data, err := json.Marshal(compressContext(txs, 50))
		if err != nil {
			return nil, err
		}

		text, err = c.generate(ctx, generateRequest{
			SystemInstruction: systemText("Tạo báo cáo chốt sổ. JSON, Tiếng Việt. Súc tích, tập trung vào con số và giải pháp."),
			Contents:          userText(fmt.Sprintf("Data: %s. Prev: %s", data, prevSummary)),
			GenerationConfig: &generationConfig{
				ResponseMIMEType: "application/json",
				ResponseSchema:   reportSchema(),
			},
		})
		if err != nil {
			return nil, err
		}
		c.reports.put(key, text)
	} else {
		c.log.Debug("cache hit: cycle report")
	}

	var report cycle.Report
	if err := json.Unmarshal([]byte(text), &report); err != nil {
		return nil, fmt.Errorf("decode cycle report: %w", err)
	}
	return &report, nil
}

// =============================================================================
// FREE-TEXT ENTRY PARSING
// =============================================================================

// ParseTransaction extracts a transaction from free text or a voice
// transcript ("trà sữa 50k" and the like). Not cached: input is arbitrary.
func (c *Client) ParseTransaction(ctx context.Context, input string) (*ParsedEntry, error) {
	categories := ""
	for i, cat := range ledger.Categories() {
		if i > 0 {
			categories += ", "
		}
		categories += string(cat)
	}

	instruction := fmt.Sprintf(`NLP tài chính. Trích xuất sang JSON: amount (number), type (expense/income), category (phải thuộc [%s]), note.
Quy tắc: 50k=50000, 1tr=1000000. Cẩn thận ánh xạ danh mục theo ngữ nghĩa.`, categories)

	text, err := c.generate(ctx, generateRequest{
		SystemInstruction: systemText(instruction),
		Contents:          userText(input),
		GenerationConfig: &generationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema: objectSchema(map[string]any{
				"amount":   map[string]any{"type": "NUMBER"},
				"type":     map[string]any{"type": "STRING", "enum": []string{"expense", "income"}},
				"category": map[string]any{"type": "STRING"},
				"note":     map[string]any{"type": "STRING"},
			}, "amount", "type", "category", "note"),
		},
	})
	if err != nil {
		return nil, err
	}

	var entry ParsedEntry
	if err := json.Unmarshal([]byte(text), &entry); err != nil {
		return nil, fmt.Errorf("decode parsed entry: %w", err)
	}
	return &entry, nil
}

// =============================================================================
// BEHAVIORAL ANALYSIS
// =============================================================================

// AnalyzeBehavior forecasts spending behavior for the active set.
func (c *Client) AnalyzeBehavior(ctx context.Context, txs []ledger.Transaction) (*BehaviorAnalysis, error) {
	if len(txs) == 0 {
		return nil, nil
	}

	key := fingerprint(txs)
	text, ok := c.analyses.get(key)
	if !ok {
		data, err := json.Marshal(compressContext(txs, 40))
		if err != nil {
			return nil, err
		}

		instruction := `Bạn là AI SMART MONEY. Phân tích tài chính súc tích.
- Dự báo: run_out_date (YYYY-MM-DD hoặc 'SAFE').
- Insight: 1 câu cực ngắn.
- Projection: text ngắn.
- Causes/Actions: List string.
JSON duy nhất.`

		text, err = c.generate(ctx, generateRequest{
			SystemInstruction: systemText(instruction),
			Contents:          userText(fmt.Sprintf("Dữ liệu nén: %s", data)),
			GenerationConfig: &generationConfig{
				ResponseMIMEType: "application/json",
				ResponseSchema: objectSchema(map[string]any{
					"behavior_insight":   map[string]any{"type": "STRING"},
					"run_out_date":       map[string]any{"type": "STRING"},
					"projection_summary": map[string]any{"type": "STRING"},
					"causes":             stringArraySchema(),
					"preventive_actions": stringArraySchema(),
				}, "behavior_insight", "run_out_date", "projection_summary", "causes", "preventive_actions"),
			},
		})
		if err != nil {
			return nil, err
		}
		c.analyses.put(key, text)
	} else {
		c.log.Debug("cache hit: behavioral analysis")
	}

	var analysis BehaviorAnalysis
	if err := json.Unmarshal([]byte(text), &analysis); err != nil {
		return nil, fmt.Errorf("decode behavior analysis: %w", err)
	}
	return &analysis, nil
}

// =============================================================================
// ASSISTANT QUERIES
// =============================================================================

// Query answers a free-form financial question over the active set and the
// tail of the archive history. Returns markdown text.
func (c *Client) Query(ctx context.Context, question string, txs []ledger.Transaction, archives []cycle.ArchivedCycle) (string, error) {
	key := question + "-" + fingerprint(txs)
	if text, ok := c.queries.get(key); ok {
		c.log.Debug("cache hit: assistant query")
		return text, nil
	}

	hist := make([]string, 0, 2)
	start := len(archives) - 2
	if start < 0 {
		start = 0
	}
	for _, a := range archives[start:] {
		summary := ""
		if a.Report != nil {
			summary = truncateRunes(a.Report.Summary, 30)
		}
		hist = append(hist, fmt.Sprintf("%s: %s", a.CycleID, summary))
	}

	payload, err := json.Marshal(map[string]any{
		"now":  time.Now().Format("2006-01-02"),
		"data": compressContext(txs, 30),
		"hist": hist,
	})
	if err != nil {
		return "", err
	}

	temp := 0.1
	text, err := c.generate(ctx, generateRequest{
		SystemInstruction: systemText(`Bạn là AI SMART MONEY. Trả lời truy vấn tài chính.
Markdown, tiếng Việt. In đậm số tiền. Cực kỳ ngắn gọn, bỏ qua chào hỏi.`),
		Contents:         userText(fmt.Sprintf("Context: %s. Query: %q", payload, question)),
		GenerationConfig: &generationConfig{Temperature: &temp},
	})
	if err != nil {
		return "", err
	}

	c.queries.put(key, text)
	return text, nil
}

// =============================================================================
// SCHEMA / PROMPT HELPERS
// =============================================================================

func systemText(text string) *content {
	return &content{Parts: []part{{Text: text}}}
}

func userText(text string) []content {
	return []content{{Parts: []part{{Text: text}}}}
}

func objectSchema(props map[string]any, required ...string) map[string]any {
	return map[string]any{
		"type":       "OBJECT",
		"properties": props,
		"required":   required,
	}
}

func stringArraySchema() map[string]any {
	return map[string]any{"type": "ARRAY", "items": map[string]any{"type": "STRING"}}
}

func reportSchema() map[string]any {
	return objectSchema(map[string]any{
		"summary": map[string]any{"type": "STRING"},
		"stats": objectSchema(map[string]any{
			"totalIncome":    map[string]any{"type": "NUMBER"},
			"totalExpense":   map[string]any{"type": "NUMBER"},
			"balance":        map[string]any{"type": "NUMBER"},
			"financialScore": map[string]any{"type": "NUMBER"},
			"bestCategory":   map[string]any{"type": "STRING"},
			"worstCategory":  map[string]any{"type": "STRING"},
			"abnormalDays":   stringArraySchema(),
		}, "totalIncome", "totalExpense", "balance", "financialScore", "bestCategory", "worstCategory", "abnormalDays"),
		"comparison":        map[string]any{"type": "STRING"},
		"behavioralInsight": map[string]any{"type": "STRING"},
		"recommendation":    map[string]any{"type": "STRING"},
	}, "summary", "stats", "comparison", "behavioralInsight", "recommendation")
}
