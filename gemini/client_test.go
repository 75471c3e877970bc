package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tranvietnhattu/SMARTMONEY/cycle"
	"github.com/Tranvietnhattu/SMARTMONEY/ledger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	log := logrus.New()
	log.SetOutput(io.Discard)
	c, err := New("test-key", "", log)
	require.NoError(t, err)
	c.baseURL = srv.URL
	return c
}

// candidateText wraps model output the way the API does.
func candidateText(text string) string {
	resp := generateResponse{}
	resp.Candidates = append(resp.Candidates, struct {
		Content content `json:"content"`
	}{Content: content{Parts: []part{{Text: text}}}})
	raw, _ := json.Marshal(resp)
	return string(raw)
}

func testTxs() []ledger.Transaction {
	return []ledger.Transaction{
		{
			ID:       "t1",
			Type:     ledger.TypeExpense,
			Amount:   decimal.NewFromInt(45000),
			Category: ledger.CategoryFood,
			Date:     "2024-06-12T09:30:00+07:00",
			Source:   ledger.SourceCash,
			Note:     "trà sữa size L thêm trân châu",
		},
		{
			ID:       "t2",
			Type:     ledger.TypeIncome,
			Amount:   decimal.NewFromInt(10000000),
			Category: ledger.CategorySalary,
			Date:     "2024-06-01T08:00:00+07:00",
			Source:   ledger.SourceBank,
		},
	}
}

// =============================================================================
// CONSTRUCTION
// =============================================================================

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New("", "", nil)
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestNew_DefaultsModel(t *testing.T) {
	c, err := New("k", "", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, c.model)
}

// =============================================================================
// TRANSPORT
// =============================================================================

func TestGenerate_RetriesOnServerError(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "upstream overloaded", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, candidateText("ok"))
	})

	text, err := c.generate(context.Background(), generateRequest{Contents: userText("hi")})
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, 2, calls)
}

func TestGenerate_DoesNotRetryClientErrors(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "bad schema", http.StatusBadRequest)
	})

	_, err := c.generate(context.Background(), generateRequest{Contents: userText("hi")})
	require.Error(t, err)
	assert.Equal(t, 1, calls, "4xx other than 429 must not be retried")

	var apiErr *apiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestGenerate_EmptyCandidates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates":[]}`)
	})

	_, err := c.generate(context.Background(), generateRequest{Contents: userText("hi")})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

// =============================================================================
// CYCLE REPORT
// =============================================================================

func TestGenerateCycleReport_DecodesAndCaches(t *testing.T) {
	report := `{
		"summary": "Tháng này chi tiêu ổn định.",
		"stats": {
			"totalIncome": 10000000,
			"totalExpense": 45000,
			"balance": 9955000,
			"financialScore": 88,
			"bestCategory": "Ăn uống",
			"worstCategory": "Mua sắm",
			"abnormalDays": ["2024-06-12"]
		},
		"comparison": "Tốt hơn tháng trước.",
		"behavioralInsight": "Chi nhỏ lẻ buổi tối.",
		"recommendation": "Giữ tỷ lệ tiết kiệm."
	}`

	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.GenerationConfig)
		assert.Equal(t, "application/json", req.GenerationConfig.ResponseMIMEType)
		fmt.Fprint(w, candidateText(report))
	})

	got, err := c.GenerateCycleReport(context.Background(), testTxs(), "tháng trước tiết kiệm tốt")
	require.NoError(t, err)
	assert.Equal(t, "Tháng này chi tiêu ổn định.", got.Summary)
	assert.Equal(t, 88, got.Stats.FinancialScore)
	assert.True(t, got.Stats.Balance.Equal(decimal.NewFromInt(9955000)))
	assert.Equal(t, []string{"2024-06-12"}, got.Stats.AbnormalDays)

	// Same fingerprint: second call is served from cache.
	_, err = c.GenerateCycleReport(context.Background(), testTxs(), "")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

// =============================================================================
// PARSING / ANALYSIS / QUERIES
// =============================================================================

func TestParseTransaction(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, candidateText(`{"amount":50000,"type":"expense","category":"Ăn uống","note":"trà sữa"}`))
	})

	entry, err := c.ParseTransaction(context.Background(), "trà sữa 50k")
	require.NoError(t, err)
	assert.True(t, entry.Amount.Equal(decimal.NewFromInt(50000)))
	assert.Equal(t, "expense", entry.Type)
	assert.Equal(t, "Ăn uống", entry.Category)
}

func TestAnalyzeBehavior_EmptySetIsNil(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an empty set")
	})

	analysis, err := c.AnalyzeBehavior(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, analysis)
}

func TestAnalyzeBehavior_Decodes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, candidateText(`{
			"behavior_insight": "Chi tiêu dồn cuối tuần.",
			"run_out_date": "SAFE",
			"projection_summary": "Còn dư đến cuối chu kỳ.",
			"causes": ["ăn ngoài"],
			"preventive_actions": ["đặt hạn mức tuần"]
		}`))
	})

	analysis, err := c.AnalyzeBehavior(context.Background(), testTxs())
	require.NoError(t, err)
	require.NotNil(t, analysis)
	assert.Equal(t, "SAFE", analysis.RunOutDate)
	assert.Equal(t, []string{"ăn ngoài"}, analysis.Causes)
}

func TestQuery_CachesPerQuestion(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, candidateText("**45.000đ** cho trà sữa."))
	})

	archives := []cycle.ArchivedCycle{
		{CycleID: "CHU_KY-2024-04"},
		{CycleID: "CHU_KY-2024-05", Report: &cycle.Report{Summary: "ổn"}},
	}

	answer, err := c.Query(context.Background(), "tháng này tiêu gì nhiều nhất?", testTxs(), archives)
	require.NoError(t, err)
	assert.Contains(t, answer, "45.000đ")

	_, err = c.Query(context.Background(), "tháng này tiêu gì nhiều nhất?", testTxs(), archives)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	// A different question misses the cache.
	_, err = c.Query(context.Background(), "còn bao nhiêu tiền?", testTxs(), archives)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

// =============================================================================
// CACHE AND COMPRESSION INTERNALS
// =============================================================================

func TestCache_ExpiresOnRead(t *testing.T) {
	now := time.Now()
	c := newCache(10 * time.Minute)
	c.now = func() time.Time { return now }

	c.put("k", "v")
	got, ok := c.get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)

	now = now.Add(10 * time.Minute)
	_, ok = c.get("k")
	assert.False(t, ok)
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, "empty", fingerprint(nil))

	txs := testTxs()
	fp := fingerprint(txs)
	assert.Equal(t, "2-t1-10045000", fp)

	// Any change to the set moves the fingerprint.
	txs[0].Amount = decimal.NewFromInt(46000)
	assert.NotEqual(t, fp, fingerprint(txs))
}

func TestCompressContext(t *testing.T) {
	out := compressContext(testTxs(), 50)
	require.Len(t, out, 2)

	assert.Equal(t, "C", out[0].L)
	assert.Equal(t, 45000.0, out[0].A)
	assert.Equal(t, "Ăn ", out[0].C, "category is cut at 3 runes, not bytes")
	assert.Equal(t, "06-12", out[0].D)
	assert.Equal(t, "trà sữa size L ", out[0].N, "note is cut at 15 runes")

	assert.Equal(t, "T", out[1].L)
}

func TestCompressContext_Limit(t *testing.T) {
	txs := make([]ledger.Transaction, 10)
	for i := range txs {
		txs[i] = testTxs()[0]
	}
	assert.Len(t, compressContext(txs, 3), 3)
}
