package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stoalabs/ratebot/internal/adapters/storage/memory"
	"github.com/stoalabs/ratebot/internal/domain"
	"github.com/stoalabs/ratebot/internal/metrics"
)

type mockLLM struct {
	reply       string
	err         error
	transcripts [][]domain.Message
}

func (m *mockLLM) Complete(_ context.Context, transcript []domain.Message) (string, error) {
	copied := make([]domain.Message, len(transcript))
	copy(copied, transcript)
	m.transcripts = append(m.transcripts, copied)
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

type stubRates struct {
	rates map[string]float64
	err   error
	calls int
}

func (s *stubRates) LatestRates(context.Context) (map[string]float64, error) {
	s.calls++
	return s.rates, s.err
}

func newTestService(llm *mockLLM, rates *stubRates) *Service {
	store := memory.NewRegistryStoreWithClock(func() time.Time {
		return time.Unix(1700000000, 0)
	})
	return NewService(store, llm, rates, metrics.New(prometheus.NewRegistry()))
}

func TestAddSession(t *testing.T) {
	tests := []struct {
		name        string
		sessionName string
		wantName    string
	}{
		{
			name:        "explicit name",
			sessionName: "work",
			wantName:    "work",
		},
		{
			name:        "generated name",
			sessionName: "",
			wantName:    "", // non-empty, checked below
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(&mockLLM{reply: "ok"}, &stubRates{})

			got, err := svc.AddSession(context.Background(), "u1", tt.sessionName)
			require.NoError(t, err)
			if tt.wantName != "" {
				assert.Equal(t, tt.wantName, got)
			}
			assert.NotEmpty(t, got)
			assert.Equal(t, got, svc.ActiveSessionName("u1"))
			assert.Contains(t, svc.ListSessions("u1"), got)
		})
	}
}

func TestAddSessionIdempotent(t *testing.T) {
	svc := newTestService(&mockLLM{reply: "ok"}, &stubRates{})
	ctx := context.Background()

	_, err := svc.AddSession(ctx, "u1", "work")
	require.NoError(t, err)
	before := len(svc.ListSessions("u1"))

	_, err = svc.AddSession(ctx, "u1", "work")
	require.NoError(t, err)

	assert.Len(t, svc.ListSessions("u1"), before)
	assert.Equal(t, "work", svc.ActiveSessionName("u1"))
}

func TestAddSessionCountsOnlyInsertions(t *testing.T) {
	store := memory.NewRegistryStore()
	m := metrics.New(prometheus.NewRegistry())
	svc := NewService(store, &mockLLM{reply: "ok"}, &stubRates{}, m)
	ctx := context.Background()

	_, err := svc.AddSession(ctx, "u1", "work")
	require.NoError(t, err)
	_, err = svc.AddSession(ctx, "u1", "work")
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsCreatedTotal))
}

func TestFreshUserHasOneSession(t *testing.T) {
	svc := newTestService(&mockLLM{reply: "ok"}, &stubRates{})

	names := svc.ListSessions("fresh")
	require.Len(t, names, 1)
	assert.NotEmpty(t, svc.ActiveSessionName("fresh"))
	assert.Equal(t, names[0], svc.ActiveSessionName("fresh"))
}

func TestSessionCreationOrder(t *testing.T) {
	svc := newTestService(&mockLLM{reply: "ok"}, &stubRates{})
	ctx := context.Background()

	defaultName := svc.ActiveSessionName("u1")
	_, err := svc.AddSession(ctx, "u1", "work")
	require.NoError(t, err)
	_, err = svc.AddSession(ctx, "u1", "home")
	require.NoError(t, err)

	assert.Equal(t, []string{defaultName, "work", "home"}, svc.ListSessions("u1"))
	assert.Equal(t, "home", svc.ActiveSessionName("u1"))
}

func TestSwitchSessionUnknown(t *testing.T) {
	svc := newTestService(&mockLLM{reply: "ok"}, &stubRates{})

	active := svc.ActiveSessionName("u1")
	err := svc.SwitchSession(context.Background(), "u1", "nonexistent")
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.Equal(t, active, svc.ActiveSessionName("u1"))
}

func TestSendMessageTranscriptShape(t *testing.T) {
	llm := &mockLLM{reply: "hi!"}
	rates := &stubRates{rates: map[string]float64{"EUR": 0.92, "GBP": 0.79}}
	svc := newTestService(llm, rates)

	reply, err := svc.SendMessage(context.Background(), "u1", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi!", reply)

	require.Len(t, llm.transcripts, 1)
	sent := llm.transcripts[0]
	require.Len(t, sent, 2)
	assert.Equal(t, domain.RoleSystem, sent[0].Role)
	assert.Equal(t, "EUR: 0.92\nGBP: 0.79", sent[0].Content)
	assert.Equal(t, domain.Message{Role: domain.RoleUser, Content: "hello"}, sent[1])
}

func TestSendMessageTruncates(t *testing.T) {
	llm := &mockLLM{reply: "ok"}
	svc := newTestService(llm, &stubRates{})

	long := strings.Repeat("é", 5000)
	_, err := svc.SendMessage(context.Background(), "u1", long)
	require.NoError(t, err)

	sent := llm.transcripts[0]
	stored := sent[len(sent)-1].Content
	assert.Equal(t, 4096, len([]rune(stored)))
	assert.Equal(t, string([]rune(long)[:4096]), stored)
}

func TestSendMessagePreambleRefreshedEveryTurn(t *testing.T) {
	llm := &mockLLM{reply: "ok"}
	rates := &stubRates{rates: map[string]float64{"EUR": 1}}
	svc := newTestService(llm, rates)
	ctx := context.Background()

	_, err := svc.SendMessage(ctx, "u1", "first")
	require.NoError(t, err)

	rates.rates = map[string]float64{"EUR": 2}
	_, err = svc.SendMessage(ctx, "u1", "second")
	require.NoError(t, err)

	assert.Equal(t, 2, rates.calls)

	second := llm.transcripts[1]
	systems := 0
	for _, m := range second {
		if m.Role == domain.RoleSystem {
			systems++
		}
	}
	assert.Equal(t, 1, systems, "exactly one system message regardless of prior turns")
	assert.Equal(t, "EUR: 2", second[0].Content)

	// preamble, user, assistant, user
	require.Len(t, second, 4)
	assert.Equal(t, domain.RoleUser, second[1].Role)
	assert.Equal(t, domain.RoleAssistant, second[2].Role)
	assert.Equal(t, domain.RoleUser, second[3].Role)
}

func TestSendMessagePreambleTopFiveSorted(t *testing.T) {
	llm := &mockLLM{reply: "ok"}
	rates := &stubRates{rates: map[string]float64{
		"USD": 1, "EUR": 0.92, "GBP": 0.79, "JPY": 149.5, "CHF": 0.88, "AUD": 1.52, "CAD": 1.36,
	}}
	svc := newTestService(llm, rates)

	_, err := svc.SendMessage(context.Background(), "u1", "hello")
	require.NoError(t, err)

	lines := strings.Split(llm.transcripts[0][0].Content, "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "AUD: 1.52", lines[0])
	assert.Equal(t, "GBP: 0.79", lines[4])
}

func TestSendMessageRatesFailureDegrades(t *testing.T) {
	llm := &mockLLM{reply: "still here"}
	svc := newTestService(llm, &stubRates{err: errors.New("upstream down")})

	reply, err := svc.SendMessage(context.Background(), "u1", "hello")
	require.NoError(t, err, "rate failure must not abort the turn")
	assert.Equal(t, "still here", reply)
	assert.Equal(t, "", llm.transcripts[0][0].Content, "preamble degrades to empty")
}

func TestSendMessageCompletionFailureLeavesTranscriptUntouched(t *testing.T) {
	llm := &mockLLM{err: errors.New("quota exceeded")}
	svc := newTestService(llm, &stubRates{})
	ctx := context.Background()

	_, err := svc.SendMessage(ctx, "u1", "hello")
	require.Error(t, err)

	llm.err = nil
	llm.reply = "recovered"
	_, err = svc.SendMessage(ctx, "u1", "hello again")
	require.NoError(t, err)

	// the failed turn left nothing behind: preamble + single new user message
	require.Len(t, llm.transcripts, 2)
	assert.Len(t, llm.transcripts[1], 2)
}

func TestSendMessageAccumulatesTurns(t *testing.T) {
	llm := &mockLLM{reply: "r"}
	svc := newTestService(llm, &stubRates{})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.SendMessage(ctx, "u1", "m")
		require.NoError(t, err)
	}

	last := llm.transcripts[2]
	// preamble + 2 committed turns (user+assistant each) + new user message
	require.Len(t, last, 6)
	for i := 1; i < len(last); i += 2 {
		assert.Equal(t, domain.RoleUser, last[i].Role)
	}
	for i := 2; i < len(last)-1; i += 2 {
		assert.Equal(t, domain.RoleAssistant, last[i].Role)
	}
}
