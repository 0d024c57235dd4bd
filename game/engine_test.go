// game/engine_test.go
package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/jetchart/impostor/words"
)

// instantClock removes all pacing so flows run at test speed.
type instantClock struct{}

func (instantClock) Sleep(ctx context.Context, d time.Duration) {}

// recordingNarrator collects every announcement.
type recordingNarrator struct {
	mutex sync.Mutex
	lines []string
}

func (n *recordingNarrator) Announce(ctx context.Context, text string) error {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.lines = append(n.lines, text)
	return nil
}

func (n *recordingNarrator) SetMuted(muted bool) {}
func (n *recordingNarrator) Cancel()             {}

func (n *recordingNarrator) all() []string {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	return append([]string(nil), n.lines...)
}

func (n *recordingNarrator) count(substr string) int {
	c := 0
	for _, l := range n.all() {
		if strings.Contains(l, substr) {
			c++
		}
	}
	return c
}

// stubSource returns a fixed word and counts draws.
type stubSource struct {
	mutex sync.Mutex
	word  words.Word
	draws int
}

func (s *stubSource) Draw(categories []string, d words.Difficulty) (words.Word, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.draws++
	return s.word, nil
}

func (s *stubSource) drawCount() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.draws
}

// stubSuggester delegates to optional function fields; nil fields fail.
type stubSuggester struct {
	describe func(DescribeRequest) (string, error)
	vote     func(VoteRequest) (string, error)
	deduce   func(DeduceRequest) (string, error)
}

func (s *stubSuggester) SuggestDescription(ctx context.Context, req DescribeRequest) (string, error) {
	if s.describe == nil {
		return "", errors.New("suggestion service down")
	}
	return s.describe(req)
}

func (s *stubSuggester) SuggestVote(ctx context.Context, req VoteRequest) (string, error) {
	if s.vote == nil {
		return "", errors.New("suggestion service down")
	}
	return s.vote(req)
}

func (s *stubSuggester) DeduceWord(ctx context.Context, req DeduceRequest) (string, error) {
	if s.deduce == nil {
		return "", errors.New("suggestion service down")
	}
	return s.deduce(req)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func waitIdle(t *testing.T, e *Engine) {
	t.Helper()
	waitFor(t, "engine idle", func() bool { return !e.Snapshot().Busy })
}

func humans(names ...string) []Player {
	players := make([]Player, len(names))
	for i, n := range names {
		players[i] = Player{Name: n}
	}
	return players
}

type engineOption func(*Deps)

func withSuggester(s Suggester) engineOption {
	return func(d *Deps) { d.Suggester = s }
}

func newTestEngine(t *testing.T, players []Player, impostorCount int, opts ...engineOption) (*Engine, *recordingNarrator, *stubSource) {
	t.Helper()
	src := &stubSource{word: words.Word{Text: "GUITARRA", Hint: "Instrumento"}}
	nar := &recordingNarrator{}
	deps := Deps{
		Logger:   zap.NewNop().Sugar(),
		Words:    src,
		Narrator: nar,
		Clock:    instantClock{},
		Rand:     rand.New(rand.NewSource(42)),
	}
	for _, opt := range opts {
		opt(&deps)
	}
	cfg := Config{
		Players:       players,
		ImpostorCount: impostorCount,
		Difficulty:    words.Normal,
	}
	e, err := NewEngine(cfg, deps)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	t.Cleanup(e.Close)
	return e, nar, src
}

// revealAll marks every player's card as seen and waits for the opening
// turn announcement to finish.
func revealAll(t *testing.T, e *Engine) {
	t.Helper()
	for i := range e.Snapshot().Players {
		if err := e.MarkSeen(i); err != nil {
			t.Fatalf("MarkSeen(%d): %v", i, err)
		}
	}
	waitIdle(t, e)
}

func describeAs(t *testing.T, e *Engine, text string) string {
	t.Helper()
	current, ok := e.CurrentPlayer()
	if !ok {
		t.Fatalf("no current player in phase %s", e.Snapshot().Phase)
	}
	if err := e.SubmitDescription(current.Name, text); err != nil {
		t.Fatalf("SubmitDescription(%s, %q): %v", current.Name, text, err)
	}
	waitIdle(t, e)
	return current.Name
}

func TestNewEngineRejectsInvalidConfig(t *testing.T) {
	src := &stubSource{word: words.Word{Text: "GUITARRA", Hint: "Instrumento"}}
	cases := []Config{
		{Players: humans("Ana", "Beto"), ImpostorCount: 1},
		{Players: humans("Ana", "Beto", "Carla"), ImpostorCount: 0},
		{Players: humans("Ana", "Beto", "Carla"), ImpostorCount: 3},
		{Players: humans("Ana", "Ana", "Carla"), ImpostorCount: 1},
		{Players: []Player{{Name: ""}, {Name: "Beto"}, {Name: "Carla"}}, ImpostorCount: 1},
	}
	for i, cfg := range cases {
		if _, err := NewEngine(cfg, Deps{Words: src}); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("case %d: got %v, want ErrInvalidConfig", i, err)
		}
	}
}

func TestRevealPhaseGatesPlaying(t *testing.T) {
	e, _, _ := newTestEngine(t, humans("Ana", "Beto", "Carla"), 1)
	e.Start()

	if got := e.Snapshot().Phase; got != PhaseReveal {
		t.Fatalf("phase = %s, want reveal", got)
	}
	if err := e.SubmitDescription("Ana", "rojo"); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("describing during reveal: got %v, want ErrWrongPhase", err)
	}

	revealAll(t, e)
	if got := e.Snapshot().Phase; got != PhasePlaying {
		t.Fatalf("phase = %s after full reveal, want playing", got)
	}
}

func TestAllBotRosterSkipsReveal(t *testing.T) {
	players := []Player{
		{Name: "Bot1", IsBot: true},
		{Name: "Bot2", IsBot: true},
		{Name: "Bot3", IsBot: true},
	}
	e, _, _ := newTestEngine(t, players, 1)
	if got := e.Snapshot().Phase; got != PhasePlaying {
		t.Fatalf("phase = %s, want playing without reveal", got)
	}
	for _, p := range e.Snapshot().Players {
		if !p.HasSeenWord {
			t.Errorf("bot %s should start with the word seen", p.Name)
		}
	}
}

func TestTurnOrderAndTranscript(t *testing.T) {
	e, nar, _ := newTestEngine(t, humans("Ana", "Beto", "Carla"), 1)
	e.Start()
	revealAll(t, e)

	var spoke []string
	for i := 0; i < 3; i++ {
		spoke = append(spoke, describeAs(t, e, fmt.Sprintf("palabra%d", i)))
	}

	seen := make(map[string]bool)
	for _, name := range spoke {
		if seen[name] {
			t.Fatalf("%s spoke twice in round one: %v", name, spoke)
		}
		seen[name] = true
	}

	snap := e.Snapshot()
	if len(snap.Descriptions) != 3 {
		t.Fatalf("transcript has %d entries, want 3", len(snap.Descriptions))
	}
	for i, d := range snap.Descriptions {
		if d.Round != 1 {
			t.Errorf("description %d recorded in round %d, want 1", i, d.Round)
		}
	}
	if nar.count("dice: palabra0") != 1 {
		t.Errorf("first description was not narrated: %v", nar.all())
	}
}

func TestRoundAnnouncedBeforeTurn(t *testing.T) {
	e, nar, _ := newTestEngine(t, humans("Ana", "Beto", "Carla"), 1)
	e.Start()
	revealAll(t, e)

	for i := 0; i < 3; i++ {
		describeAs(t, e, fmt.Sprintf("palabra%d", i))
	}
	waitFor(t, "round 2", func() bool { return e.Snapshot().CurrentRound == 2 })

	lines := nar.all()
	roundAt, turnAfter := -1, -1
	for i, l := range lines {
		if l == "Comienza la ronda 2" {
			roundAt = i
		}
		if roundAt >= 0 && i > roundAt && strings.HasPrefix(l, "Es el turno de") {
			turnAfter = i
			break
		}
	}
	if roundAt < 0 {
		t.Fatalf("round 2 never announced: %v", lines)
	}
	if turnAfter < 0 {
		t.Fatalf("no turn announcement after the round announcement: %v", lines)
	}
}

func TestDuplicateDescriptionRejected(t *testing.T) {
	e, _, _ := newTestEngine(t, humans("Ana", "Beto", "Carla"), 1)
	e.Start()
	revealAll(t, e)

	describeAs(t, e, "Rojo")
	current, _ := e.CurrentPlayer()

	for _, dup := range []string{"rojo", "  ROJO  ", "rojó"} {
		if err := e.SubmitDescription(current.Name, dup); !errors.Is(err, ErrDuplicateDescription) {
			t.Errorf("duplicate %q: got %v, want ErrDuplicateDescription", dup, err)
		}
	}
	if got := len(e.Snapshot().Descriptions); got != 1 {
		t.Fatalf("rejected duplicates mutated the transcript: %d entries", got)
	}

	if err := e.SubmitDescription(current.Name, "   "); !errors.Is(err, ErrEmptyDescription) {
		t.Errorf("blank description: got %v, want ErrEmptyDescription", err)
	}
}

func TestOutOfTurnDescriptionRejected(t *testing.T) {
	e, _, _ := newTestEngine(t, humans("Ana", "Beto", "Carla"), 1)
	e.Start()
	revealAll(t, e)

	current, _ := e.CurrentPlayer()
	for _, p := range e.Snapshot().Players {
		if p.Name == current.Name {
			continue
		}
		if err := e.SubmitDescription(p.Name, "azul"); !errors.Is(err, ErrNotYourTurn) {
			t.Errorf("out-of-turn by %s: got %v, want ErrNotYourTurn", p.Name, err)
		}
	}
}

// findImpostor plays benign turns until the impostor is up.
func findImpostor(t *testing.T, e *Engine) GamePlayer {
	t.Helper()
	for i := 0; i < 10; i++ {
		current, ok := e.CurrentPlayer()
		if !ok {
			t.Fatal("game left playing phase before the impostor's turn")
		}
		if current.IsImpostor {
			return current
		}
		describeAs(t, e, fmt.Sprintf("inocente%d", i))
	}
	t.Fatal("impostor never got a turn")
	return GamePlayer{}
}

func TestImpostorLeakEndsGame(t *testing.T) {
	e, nar, _ := newTestEngine(t, humans("Ana", "Beto", "Carla"), 1)
	e.Start()
	revealAll(t, e)

	impostor := findImpostor(t, e)
	before := len(e.Snapshot().Descriptions)
	if err := e.SubmitDescription(impostor.Name, "mi guitarra es roja"); err != nil {
		t.Fatalf("leak submission: %v", err)
	}
	waitIdle(t, e)

	snap := e.Snapshot()
	if snap.Phase != PhaseImpostorWins {
		t.Fatalf("phase = %s, want impostor-wins", snap.Phase)
	}
	if len(snap.Descriptions) != before+1 {
		t.Fatalf("the leaking description must still be recorded")
	}
	if nar.count("¡El impostor gana!") != 1 {
		t.Errorf("impostor win not narrated exactly once: %v", nar.all())
	}

	if err := e.SubmitDescription(impostor.Name, "otra"); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("describing after impostor win: got %v, want ErrWrongPhase", err)
	}
}

func TestHintIsNotALeak(t *testing.T) {
	e, _, _ := newTestEngine(t, humans("Ana", "Beto", "Carla"), 1)
	e.Start()
	revealAll(t, e)

	impostor := findImpostor(t, e)
	if err := e.SubmitDescription(impostor.Name, "instrumento"); err != nil {
		t.Fatalf("hint submission: %v", err)
	}
	waitIdle(t, e)
	if got := e.Snapshot().Phase; got != PhasePlaying {
		t.Fatalf("saying the hint ended the game: phase %s", got)
	}
}

func TestInnocentSayingWordIsNotALeak(t *testing.T) {
	e, _, _ := newTestEngine(t, humans("Ana", "Beto", "Carla"), 1)
	e.Start()
	revealAll(t, e)

	current, _ := e.CurrentPlayer()
	if current.IsImpostor {
		describeAs(t, e, "inocente")
		current, _ = e.CurrentPlayer()
	}
	if err := e.SubmitDescription(current.Name, "guitarra española"); err != nil {
		t.Fatalf("innocent word submission: %v", err)
	}
	waitIdle(t, e)
	if got := e.Snapshot().Phase; got != PhasePlaying {
		t.Fatalf("an innocent saying the word ended the game: phase %s", got)
	}
}

func TestSkipTurnRecordsPlaceholder(t *testing.T) {
	e, nar, _ := newTestEngine(t, humans("Ana", "Beto", "Carla"), 1)
	e.Start()
	revealAll(t, e)

	current, _ := e.CurrentPlayer()
	if err := e.SkipTurn(current.Name); err != nil {
		t.Fatalf("SkipTurn: %v", err)
	}
	waitIdle(t, e)

	snap := e.Snapshot()
	if len(snap.Descriptions) != 1 || snap.Descriptions[0].Text != "(pasó)" {
		t.Fatalf("skip not recorded as (pasó): %+v", snap.Descriptions)
	}
	if nar.count("pasa su turno") != 1 {
		t.Errorf("skip not narrated: %v", nar.all())
	}
	next, _ := e.CurrentPlayer()
	if next.Name == current.Name {
		t.Error("skip did not advance the turn")
	}
}

func TestStartVotingGate(t *testing.T) {
	e, _, _ := newTestEngine(t, humans("Ana", "Beto", "Carla"), 1)
	e.Start()
	revealAll(t, e)

	if err := e.StartVoting(); !errors.Is(err, ErrVotingNotReady) {
		t.Fatalf("voting before anyone spoke: got %v, want ErrVotingNotReady", err)
	}
	describeAs(t, e, "uno")
	describeAs(t, e, "dos")
	if err := e.StartVoting(); !errors.Is(err, ErrVotingNotReady) {
		t.Fatalf("voting mid-round: got %v, want ErrVotingNotReady", err)
	}
	describeAs(t, e, "tres")

	if err := e.StartVoting(); err != nil {
		t.Fatalf("StartVoting after full round: %v", err)
	}
	waitIdle(t, e)
	if got := e.Snapshot().Phase; got != PhaseVoting {
		t.Fatalf("phase = %s, want voting", got)
	}
}

func TestVotingRejections(t *testing.T) {
	e, _, _ := newTestEngine(t, humans("Ana", "Beto", "Carla"), 1)
	e.Start()
	revealAll(t, e)
	for i := 0; i < 3; i++ {
		describeAs(t, e, fmt.Sprintf("palabra%d", i))
	}
	if err := e.StartVoting(); err != nil {
		t.Fatalf("StartVoting: %v", err)
	}
	waitIdle(t, e)

	voter, _ := e.CurrentVoter()
	var other string
	for _, p := range e.Snapshot().Players {
		if p.Name != voter.Name {
			other = p.Name
			break
		}
	}

	if err := e.SubmitVote(voter.Name, voter.Name); !errors.Is(err, ErrSelfVote) {
		t.Errorf("self vote: got %v, want ErrSelfVote", err)
	}
	if err := e.SubmitVote(other, voter.Name); !errors.Is(err, ErrNotYourVote) {
		t.Errorf("out-of-order vote: got %v, want ErrNotYourVote", err)
	}
	if err := e.SubmitVote(voter.Name, "Nadie"); !errors.Is(err, ErrUnknownPlayer) {
		t.Errorf("unknown target: got %v, want ErrUnknownPlayer", err)
	}
	if got := len(e.Snapshot().Votes); got != 0 {
		t.Fatalf("rejected votes were recorded: %d", got)
	}
}

// voteAll walks the voting order; pick decides each human's target.
func voteAll(t *testing.T, e *Engine, pick func(voter GamePlayer) string) {
	t.Helper()
	for {
		waitIdle(t, e)
		snap := e.Snapshot()
		if snap.Phase != PhaseVoting {
			return
		}
		voter, ok := e.CurrentVoter()
		if !ok {
			return
		}
		if voter.IsBot {
			t.Fatalf("engine idle on a bot voter %s", voter.Name)
		}
		if err := e.SubmitVote(voter.Name, pick(voter)); err != nil {
			t.Fatalf("SubmitVote(%s): %v", voter.Name, err)
		}
	}
}

func playFullRound(t *testing.T, e *Engine, round int) {
	t.Helper()
	for i := 0; i < len(e.Snapshot().Players); i++ {
		describeAs(t, e, fmt.Sprintf("r%dpalabra%d", round, i))
	}
}

func TestVotingCatchesImpostor(t *testing.T) {
	e, nar, _ := newTestEngine(t, humans("Ana", "Beto", "Carla"), 1)
	e.Start()
	revealAll(t, e)
	playFullRound(t, e, 1)

	var impostor string
	for _, p := range e.Snapshot().Players {
		if p.IsImpostor {
			impostor = p.Name
		}
	}

	if err := e.StartVoting(); err != nil {
		t.Fatalf("StartVoting: %v", err)
	}
	voteAll(t, e, func(voter GamePlayer) string {
		if voter.Name == impostor {
			for _, p := range e.Snapshot().Players {
				if p.Name != impostor {
					return p.Name
				}
			}
		}
		return impostor
	})

	waitFor(t, "finished phase", func() bool { return e.Snapshot().Phase == PhaseFinished })
	waitIdle(t, e)

	result, ok := e.Result()
	if !ok {
		t.Fatal("no result after finish")
	}
	if result.Accused != impostor || !result.ImpostorCaught {
		t.Fatalf("result = %+v, want impostor %s caught", result, impostor)
	}
	if nar.count("¡Los inocentes ganan!") != 1 {
		t.Errorf("innocents win narrated %d times, want 1: %v", nar.count("¡Los inocentes ganan!"), nar.all())
	}
	if nar.count("¡Votación terminada!") != 1 {
		t.Errorf("voting end narrated %d times, want 1", nar.count("¡Votación terminada!"))
	}
}

func TestVotingMissesImpostor(t *testing.T) {
	e, nar, _ := newTestEngine(t, humans("Ana", "Beto", "Carla"), 1)
	e.Start()
	revealAll(t, e)
	playFullRound(t, e, 1)

	var innocent string
	for _, p := range e.Snapshot().Players {
		if !p.IsImpostor {
			innocent = p.Name
			break
		}
	}

	if err := e.StartVoting(); err != nil {
		t.Fatalf("StartVoting: %v", err)
	}
	voteAll(t, e, func(voter GamePlayer) string {
		if voter.Name == innocent {
			for _, p := range e.Snapshot().Players {
				if p.Name != innocent {
					return p.Name
				}
			}
		}
		return innocent
	})

	waitFor(t, "finished phase", func() bool { return e.Snapshot().Phase == PhaseFinished })
	waitIdle(t, e)

	result, ok := e.Result()
	if !ok {
		t.Fatal("no result after finish")
	}
	if result.Accused != innocent || result.ImpostorCaught {
		t.Fatalf("result = %+v, want innocent %s accused", result, innocent)
	}
	if nar.count("El impostor gana la partida") != 1 {
		t.Errorf("impostor win narrated %d times, want 1", nar.count("El impostor gana la partida"))
	}
}

func TestBotTurnsAndVotesWithFallback(t *testing.T) {
	players := []Player{
		{Name: "Ana"},
		{Name: "Beto"},
		{Name: "Bot1", IsBot: true},
		{Name: "Bot2", IsBot: true},
	}
	// Suggester always fails, so bots use the local pools.
	e, _, _ := newTestEngine(t, players, 1, withSuggester(&stubSuggester{}))

	// Open voting from the change callback the moment the round
	// completes, the same way a player presses the vote button between
	// rounds before the next turn starts.
	var voteOnce sync.Once
	e.OnChange = func(snap Snapshot) {
		if snap.Phase != PhasePlaying || len(snap.Descriptions) != 4 {
			return
		}
		voteOnce.Do(func() {
			if err := e.StartVoting(); err != nil {
				t.Errorf("StartVoting: %v", err)
			}
		})
	}

	e.Start()
	for i := range e.Snapshot().Players {
		if e.Snapshot().Players[i].IsBot {
			continue
		}
		if err := e.MarkSeen(i); err != nil {
			t.Fatalf("MarkSeen(%d): %v", i, err)
		}
	}

	// Bots describe on their own; humans fill their slots.
	for e.Snapshot().Phase == PhasePlaying {
		current, ok := e.CurrentPlayer()
		if ok && !current.IsBot && !e.Snapshot().Busy {
			err := e.SubmitDescription(current.Name, "desc de "+current.Name)
			if err != nil && !errors.Is(err, ErrEngineBusy) && !errors.Is(err, ErrWrongPhase) {
				t.Fatalf("SubmitDescription(%s): %v", current.Name, err)
			}
		}
		time.Sleep(2 * time.Millisecond)
	}

	waitFor(t, "voting phase", func() bool { return e.Snapshot().Phase == PhaseVoting })
	waitIdle(t, e)

	descs := e.Snapshot().Descriptions
	if len(descs) != 4 {
		t.Fatalf("got %d descriptions at the vote, want 4", len(descs))
	}
	for _, d := range descs {
		if d.Text == "" {
			t.Fatal("bot recorded an empty description")
		}
	}

	order := e.Snapshot().VotingOrder
	want := []string{"Ana", "Beto", "Bot1", "Bot2"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("voting order %v, want humans first %v", order, want)
		}
	}

	voteAll(t, e, func(voter GamePlayer) string {
		if voter.Name == "Ana" {
			return "Beto"
		}
		return "Ana"
	})

	waitFor(t, "finished phase", func() bool { return e.Snapshot().Phase == PhaseFinished })
	waitIdle(t, e)

	snap := e.Snapshot()
	if len(snap.Votes) != 4 {
		t.Fatalf("got %d votes, want 4", len(snap.Votes))
	}
	for _, v := range snap.Votes {
		if v.VotedForName == v.VoterName {
			t.Fatalf("bot voted for itself: %+v", v)
		}
	}
}

func TestBotVoteUsesFuzzyMatch(t *testing.T) {
	players := []Player{
		{Name: "Ana"},
		{Name: "Beto"},
		{Name: "Bot1", IsBot: true},
	}
	sugg := &stubSuggester{
		describe: func(req DescribeRequest) (string, error) { return "sugerido", nil },
		vote:     func(req VoteRequest) (string, error) { return "creo que es BETO", nil },
	}
	e, _, _ := newTestEngine(t, players, 1, withSuggester(sugg))

	var voteOnce sync.Once
	e.OnChange = func(snap Snapshot) {
		if snap.Phase != PhasePlaying || len(snap.Descriptions) != 3 {
			return
		}
		voteOnce.Do(func() {
			if err := e.StartVoting(); err != nil {
				t.Errorf("StartVoting: %v", err)
			}
		})
	}

	e.Start()
	for i, p := range e.Snapshot().Players {
		if !p.IsBot {
			if err := e.MarkSeen(i); err != nil {
				t.Fatalf("MarkSeen: %v", err)
			}
		}
	}

	for e.Snapshot().Phase == PhasePlaying {
		current, ok := e.CurrentPlayer()
		if ok && !current.IsBot && !e.Snapshot().Busy {
			err := e.SubmitDescription(current.Name, "desc de "+current.Name)
			if err != nil && !errors.Is(err, ErrEngineBusy) && !errors.Is(err, ErrWrongPhase) {
				t.Fatalf("SubmitDescription: %v", err)
			}
		}
		time.Sleep(2 * time.Millisecond)
	}
	waitFor(t, "voting phase", func() bool { return e.Snapshot().Phase == PhaseVoting })

	voteAll(t, e, func(voter GamePlayer) string {
		if voter.Name == "Beto" {
			return "Ana"
		}
		return "Beto"
	})
	waitFor(t, "finished phase", func() bool { return e.Snapshot().Phase == PhaseFinished })
	waitIdle(t, e)

	var botVote Vote
	found := false
	for _, v := range e.Snapshot().Votes {
		if v.VoterName == "Bot1" {
			botVote = v
			found = true
			break
		}
	}
	if !found {
		t.Fatal("bot never voted")
	}
	if botVote.VotedForName != "Beto" {
		t.Errorf("bot vote = %q, want fuzzy match Beto", botVote.VotedForName)
	}
}

func TestResetRerollsEverything(t *testing.T) {
	e, _, src := newTestEngine(t, humans("Ana", "Beto", "Carla"), 1)
	e.Start()
	revealAll(t, e)
	playFullRound(t, e, 1)

	if got := src.drawCount(); got != 1 {
		t.Fatalf("draws before reset = %d, want 1", got)
	}
	if err := e.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	waitIdle(t, e)

	if got := src.drawCount(); got != 2 {
		t.Fatalf("reset must draw a fresh word, draws = %d", got)
	}
	snap := e.Snapshot()
	if snap.Phase != PhaseReveal {
		t.Fatalf("phase after reset = %s, want reveal", snap.Phase)
	}
	if len(snap.Descriptions) != 0 || len(snap.Votes) != 0 {
		t.Fatalf("reset kept transcript or votes: %+v", snap)
	}
	if len(snap.Players) != 3 {
		t.Fatalf("reset changed the roster: %d players", len(snap.Players))
	}
	for _, p := range snap.Players {
		if p.HasSeenWord {
			t.Errorf("human %s should need a fresh reveal after reset", p.Name)
		}
	}
}

func TestResetAfterFinishAllowsNewGame(t *testing.T) {
	e, _, _ := newTestEngine(t, humans("Ana", "Beto", "Carla"), 1)
	e.Start()
	revealAll(t, e)

	impostor := findImpostor(t, e)
	if err := e.SubmitDescription(impostor.Name, "es una guitarra"); err != nil {
		t.Fatalf("leak: %v", err)
	}
	waitIdle(t, e)
	if e.Snapshot().Phase != PhaseImpostorWins {
		t.Fatal("expected impostor win")
	}

	if err := e.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	revealAll(t, e)
	if got := e.Snapshot().Phase; got != PhasePlaying {
		t.Fatalf("phase after reset+reveal = %s, want playing", got)
	}
}

func TestMuteSuppressesNarration(t *testing.T) {
	e, nar, _ := newTestEngine(t, humans("Ana", "Beto", "Carla"), 1)
	e.SetMuted(true)
	e.Start()
	revealAll(t, e)
	describeAs(t, e, "rojo")

	if got := len(nar.all()); got != 0 {
		t.Fatalf("muted game narrated %d lines: %v", got, nar.all())
	}
	if !e.Snapshot().Muted {
		t.Error("snapshot does not report muted")
	}
}

func TestManagerLifecycle(t *testing.T) {
	m := NewManager()
	src := &stubSource{word: words.Word{Text: "GUITARRA", Hint: "Instrumento"}}
	cfg := Config{Players: humans("Ana", "Beto", "Carla"), ImpostorCount: 1, Difficulty: words.Normal}

	e, err := m.Create(cfg, Deps{Words: src, Clock: instantClock{}, Logger: zap.NewNop().Sugar()})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if m.Count() != 1 {
		t.Fatalf("count = %d, want 1", m.Count())
	}
	got, err := m.Get(e.ID())
	if err != nil || got != e {
		t.Fatalf("Get(%s) = %v, %v", e.ID(), got, err)
	}
	if _, err := m.Get("nope"); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("unknown id: got %v, want ErrGameNotFound", err)
	}

	m.Remove(e.ID())
	if m.Count() != 0 {
		t.Fatalf("count after remove = %d, want 0", m.Count())
	}
}
