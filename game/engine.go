// game/engine.go
package game

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jetchart/impostor/logger"
	"github.com/jetchart/impostor/words"
)

// Pacing pauses between narration steps. The device feels broken when
// announcements pile on top of each other, so the turn loop breathes.
const (
	pauseBeforeRound      = 500 * time.Millisecond
	pauseBeforeTurn       = 300 * time.Millisecond
	pauseAfterDescription = time.Second
	pauseBotThink         = 500 * time.Millisecond
	pauseBotVote          = 2 * time.Second
	pauseBeforeResult     = 1500 * time.Millisecond

	suggestTimeout = 15 * time.Second
)

const skippedTurnText = "(pasó)"

// Deps are the engine's collaborators. Nil fields get safe defaults:
// a silent narrator, an instant fallback-only suggester, a real clock.
type Deps struct {
	Logger    *zap.SugaredLogger
	Words     words.Source
	Narrator  Narrator
	Suggester Suggester
	Sessions  SessionLogger
	Clock     Clock
	Observer  Observer
	Rand      *rand.Rand
}

// Engine orchestrates one game: phase machine, turn sequencing,
// descriptions, voting, and the narration/bot pipelines.
//
// Concurrency model: all state lives behind mu and is mutated only by
// discrete event handlers. Narration and bot turns run as asynchronous
// pipelines; while one is in flight the engine is busy and rejects
// conflicting player actions. Reset and Close bump the generation
// counter and cancel the game context, so a stale pipeline wakes up,
// notices its generation is gone, and dies without touching the new
// state.
type Engine struct {
	id string

	mu    sync.Mutex
	cfg   Config
	state *State

	ctx        context.Context
	cancel     context.CancelFunc
	generation uint64
	epoch      uint64 // bumped on every turn/voter advance; invalidates stale bot work
	busy       bool

	resultAnnounced bool

	log       *zap.SugaredLogger
	words     words.Source
	narrator  Narrator
	suggester Suggester
	sessions  SessionLogger
	clock     Clock
	obs       Observer
	rng       *rand.Rand

	// OnChange receives a snapshot after every state mutation; OnNotice
	// receives transient user-facing messages. Both may be nil and must
	// not call back into the engine.
	OnChange func(Snapshot)
	OnNotice func(text string)
}

// silentNarrator resolves immediately; gameplay degrades to text-only.
type silentNarrator struct{}

func (silentNarrator) Announce(ctx context.Context, text string) error { return nil }
func (silentNarrator) SetMuted(muted bool)                             {}
func (silentNarrator) Cancel()                                         {}

// realClock sleeps on the wall clock, waking early on cancellation.
type realClock struct{}

func (realClock) Sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// NewEngine validates the configuration, rolls the initial state, and
// returns an engine ready for Start.
func NewEngine(cfg Config, deps Deps) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Words == nil {
		return nil, fmt.Errorf("%w: a word source is required", ErrInvalidConfig)
	}

	e := &Engine{
		id:        uuid.New().String(),
		cfg:       cfg,
		log:       deps.Logger,
		words:     deps.Words,
		narrator:  deps.Narrator,
		suggester: deps.Suggester,
		sessions:  deps.Sessions,
		clock:     deps.Clock,
		obs:       deps.Observer,
		rng:       deps.Rand,
	}
	if e.log == nil {
		e.log = logger.Log
	}
	if e.narrator == nil {
		e.narrator = silentNarrator{}
	}
	if e.clock == nil {
		e.clock = realClock{}
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	if err := e.roll(); err != nil {
		return nil, err
	}
	e.ctx, e.cancel = context.WithCancel(context.Background())
	return e, nil
}

// ID is the unique identifier of this game.
func (e *Engine) ID() string {
	return e.id
}

// roll draws a fresh word and rebuilds the whole transient state:
// roles, turn order, transcript, votes, phase. Roster and configuration
// are preserved. Caller must not hold the lock concurrently elsewhere.
func (e *Engine) roll() error {
	w, err := e.words.Draw(e.cfg.SelectedCategories, e.cfg.Difficulty)
	if err != nil {
		return fmt.Errorf("game: drawing word: %w", err)
	}

	phase := PhaseReveal
	if allBots(e.cfg.Players) {
		// Nobody needs a private reveal; start playing directly.
		phase = PhasePlaying
	}

	muted := false
	if e.state != nil {
		muted = e.state.Muted
	}

	e.state = &State{
		Phase:             phase,
		Players:           assignRoles(e.rng, e.cfg.Players, e.cfg.ImpostorCount, w),
		TurnOrder:         shuffleOrder(e.rng, len(e.cfg.Players)),
		CurrentRound:      1,
		Word:              w.Text,
		Hint:              w.Hint,
		Difficulty:        e.cfg.Difficulty,
		Muted:             muted,
		AllowImpostorHint: e.cfg.AllowImpostorHint,
	}
	e.resultAnnounced = false
	return nil
}

// Start logs the session and, for an all-bot roster, kicks the turn
// loop. Call exactly once after NewEngine.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.sessions != nil {
		meta := e.sessionMetadataLocked()
		// Fire-and-forget: analytics never gate gameplay.
		go e.sessions.LogSession(meta)
	}
	if e.obs != nil {
		e.obs.GameStarted()
	}
	startPlaying := e.state.Phase == PhasePlaying
	gen, ep, ctx := e.generation, e.epoch, e.ctx
	if startPlaying {
		e.busy = true
	}
	e.mu.Unlock()

	e.notify()
	if startPlaying {
		go e.runTurnLoop(ctx, gen, ep)
	}
}

func (e *Engine) sessionMetadataLocked() SessionMetadata {
	names := make([]string, len(e.cfg.Players))
	bots := 0
	for i, p := range e.cfg.Players {
		names[i] = p.Name
		if p.IsBot {
			bots++
		}
	}
	return SessionMetadata{
		GameID:            e.id,
		PlayerCount:       len(e.cfg.Players),
		BotCount:          bots,
		ImpostorCount:     e.cfg.ImpostorCount,
		Difficulty:        e.cfg.Difficulty,
		PlayerNames:       names,
		AllowImpostorHint: e.cfg.AllowImpostorHint,
	}
}

// Snapshot returns a deep copy of the current state for rendering.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	s := *e.state
	s.Players = append([]GamePlayer(nil), e.state.Players...)
	s.TurnOrder = append([]int(nil), e.state.TurnOrder...)
	s.Descriptions = append([]Description(nil), e.state.Descriptions...)
	s.Votes = append([]Vote(nil), e.state.Votes...)
	s.VotingOrder = append([]string(nil), e.state.VotingOrder...)
	return Snapshot{GameID: e.id, State: s, Busy: e.busy}
}

func (e *Engine) notify() {
	if e.OnChange == nil {
		return
	}
	e.OnChange(e.Snapshot())
}

func (e *Engine) notice(text string) {
	if e.OnNotice != nil {
		e.OnNotice(text)
	}
}

// CurrentPlayer returns the player whose turn it is during the playing
// phase.
func (e *Engine) CurrentPlayer() (GamePlayer, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Phase != PhasePlaying {
		return GamePlayer{}, false
	}
	return e.currentPlayerLocked(), true
}

func (e *Engine) currentPlayerLocked() GamePlayer {
	idx := e.state.TurnOrder[e.state.CurrentTurnPosition%len(e.state.Players)]
	return e.state.Players[idx]
}

// CurrentVoter returns whose turn it is to vote.
func (e *Engine) CurrentVoter() (GamePlayer, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Phase != PhaseVoting || e.state.CurrentVoterIndex >= len(e.state.VotingOrder) {
		return GamePlayer{}, false
	}
	p, ok := e.playerByNameLocked(e.state.VotingOrder[e.state.CurrentVoterIndex])
	return p, ok
}

func (e *Engine) playerByNameLocked(name string) (GamePlayer, bool) {
	for _, p := range e.state.Players {
		if p.Name == name {
			return p, true
		}
	}
	return GamePlayer{}, false
}

// derivedRoundLocked computes the round from completed descriptions.
func (e *Engine) derivedRoundLocked() int {
	return len(e.state.Descriptions)/len(e.state.Players) + 1
}

func (e *Engine) setPhaseLocked(target Phase) error {
	if !e.state.Phase.CanTransitionTo(target) {
		return fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, e.state.Phase, target)
	}
	e.state.Phase = target
	return nil
}

// stale reports whether a pipeline's view of the world is obsolete.
func (e *Engine) stale(gen, ep uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return gen != e.generation || ep != e.epoch
}

func (e *Engine) sleep(ctx context.Context, d time.Duration) {
	e.clock.Sleep(ctx, d)
}

// announce voices text unless muted. Narration failures and timeouts
// degrade to silence; the turn loop always continues.
func (e *Engine) announce(ctx context.Context, text string) {
	e.mu.Lock()
	muted := e.state.Muted
	e.mu.Unlock()
	if muted || ctx.Err() != nil {
		return
	}
	if err := e.narrator.Announce(ctx, text); err != nil {
		e.log.Warnf("narration failed for game %s: %v", e.id, err)
		if e.obs != nil {
			e.obs.NarrationFailed()
		}
	}
}

// --- reveal phase ---

// MarkSeen records that the player at roster index has privately viewed
// their card. Once everyone has, the game moves to playing.
func (e *Engine) MarkSeen(index int) error {
	e.mu.Lock()
	if e.state.Phase != PhaseReveal {
		e.mu.Unlock()
		return fmt.Errorf("%w: reveal is over", ErrWrongPhase)
	}
	if index < 0 || index >= len(e.state.Players) {
		e.mu.Unlock()
		return ErrUnknownPlayer
	}
	e.state.Players[index].HasSeenWord = true

	ready := true
	for _, p := range e.state.Players {
		if !p.HasSeenWord {
			ready = false
			break
		}
	}
	if !ready {
		e.mu.Unlock()
		e.notify()
		return nil
	}

	if err := e.setPhaseLocked(PhasePlaying); err != nil {
		e.mu.Unlock()
		return err
	}
	e.busy = true
	gen, ep, ctx := e.generation, e.epoch, e.ctx
	e.mu.Unlock()
	e.notify()

	go func() {
		e.announce(ctx, "Iniciando partida")
		e.runTurnLoop(ctx, gen, ep)
	}()
	return nil
}

// --- playing phase ---

// SubmitDescription records one description for the player whose turn it
// is. Duplicates are rejected without mutating state; an impostor whose
// text contains the secret word ends the game immediately.
func (e *Engine) SubmitDescription(playerName, text string) error {
	e.mu.Lock()
	if e.state.Phase != PhasePlaying {
		e.mu.Unlock()
		return ErrWrongPhase
	}
	if e.busy {
		e.mu.Unlock()
		return ErrEngineBusy
	}
	current := e.currentPlayerLocked()
	if current.Name != playerName {
		e.mu.Unlock()
		return fmt.Errorf("%w: it is %s's turn", ErrNotYourTurn, current.Name)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		e.mu.Unlock()
		return ErrEmptyDescription
	}
	if e.isDuplicateLocked(text) {
		e.mu.Unlock()
		return ErrDuplicateDescription
	}

	leaked := e.recordDescriptionLocked(current, text)
	e.busy = true
	gen, ep, ctx := e.generation, e.epoch, e.ctx
	e.mu.Unlock()
	e.notify()

	go e.afterDescription(ctx, gen, ep, current.Name, text, leaked)
	return nil
}

func (e *Engine) isDuplicateLocked(text string) bool {
	n := Normalize(text)
	for _, d := range e.state.Descriptions {
		if Normalize(d.Text) == n {
			return true
		}
	}
	return false
}

// recordDescriptionLocked appends the description and runs leak
// detection. The description is recorded first so the transcript shows
// what was said even when it ends the game. Returns whether the word
// leaked.
func (e *Engine) recordDescriptionLocked(p GamePlayer, text string) bool {
	leaked := p.IsImpostor && strings.Contains(Normalize(text), Normalize(e.state.Word))

	e.state.Descriptions = append(e.state.Descriptions, Description{
		PlayerName: p.Name,
		Text:       text,
		Round:      e.state.CurrentRound,
	})
	if e.obs != nil {
		e.obs.DescriptionRecorded()
	}

	if leaked {
		if err := e.setPhaseLocked(PhaseImpostorWins); err != nil {
			// Only reachable from playing; keep the log honest anyway.
			e.log.Errorf("game %s: leak transition rejected: %v", e.id, err)
			return false
		}
		if e.obs != nil {
			e.obs.GameFinished(PhaseImpostorWins)
		}
	}
	return leaked
}

// afterDescription narrates the recorded description and advances.
func (e *Engine) afterDescription(ctx context.Context, gen, ep uint64, name, text string, leaked bool) {
	if leaked {
		e.announce(ctx, fmt.Sprintf("¡%s dijo la palabra secreta: %s! ¡El impostor gana!", name, text))
		e.finishPipeline(gen, ep)
		return
	}
	if e.stale(gen, ep) {
		return
	}

	e.announce(ctx, fmt.Sprintf("%s dice: %s", name, text))
	e.sleep(ctx, pauseAfterDescription)

	next, ok := e.advanceTurn(gen, ep)
	if !ok {
		return
	}
	e.runTurnLoop(ctx, gen, next)
}

// advanceTurn moves the cursor one position and returns the new epoch,
// which the continuing pipeline must carry. Returns false when the
// pipeline went stale.
func (e *Engine) advanceTurn(gen, ep uint64) (uint64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.generation || ep != e.epoch || e.state.Phase != PhasePlaying {
		return 0, false
	}
	e.state.CurrentTurnPosition++
	e.epoch++
	return e.epoch, true
}

// runTurnLoop announces a round change (always before the turn
// announcement), announces whose turn it is, and drives bot turns. It
// ends either by handing control to a human (busy=false) or after a
// bot's description has been processed recursively.
func (e *Engine) runTurnLoop(ctx context.Context, gen, ep uint64) {
	e.mu.Lock()
	if gen != e.generation || ep != e.epoch || e.state.Phase != PhasePlaying {
		e.mu.Unlock()
		return
	}
	derived := e.derivedRoundLocked()
	announceRound := derived > e.state.CurrentRound
	current := e.currentPlayerLocked()
	e.mu.Unlock()

	if announceRound {
		e.sleep(ctx, pauseBeforeRound)
		e.announce(ctx, fmt.Sprintf("Comienza la ronda %d", derived))

		e.mu.Lock()
		if gen != e.generation || ep != e.epoch {
			e.mu.Unlock()
			return
		}
		e.state.CurrentRound = derived
		e.mu.Unlock()
		e.notify()
		e.notice(fmt.Sprintf("¡Ronda %d!", derived))
	}

	e.sleep(ctx, pauseBeforeTurn)
	if e.stale(gen, ep) {
		return
	}
	e.announce(ctx, fmt.Sprintf("Es el turno de %s", current.Name))

	if current.IsBot {
		e.sleep(ctx, pauseBotThink)
		e.runBotTurn(ctx, gen, ep)
		return
	}
	e.finishPipeline(gen, ep)
}

// finishPipeline releases the busy flag if this pipeline still owns the
// engine, and publishes the resulting state. A preempted pipeline must
// not clear the flag; its successor owns it now.
func (e *Engine) finishPipeline(gen, ep uint64) {
	e.mu.Lock()
	if gen == e.generation && ep == e.epoch {
		e.busy = false
	}
	e.mu.Unlock()
	e.notify()
}

// runBotTurn obtains a description for the current bot (suggestion
// service first, deterministic fallback on any failure), applies the
// same duplicate and leak rules as human input, and continues the loop.
func (e *Engine) runBotTurn(ctx context.Context, gen, ep uint64) {
	e.mu.Lock()
	if gen != e.generation || ep != e.epoch || e.state.Phase != PhasePlaying {
		e.mu.Unlock()
		return
	}
	bot := e.currentPlayerLocked()
	req := DescribeRequest{
		Word:       bot.Word,
		Hint:       bot.Hint,
		IsImpostor: bot.IsImpostor,
		Difficulty: e.state.Difficulty,
	}
	used := make(map[string]struct{}, len(e.state.Descriptions))
	for _, d := range e.state.Descriptions {
		req.PreviousDescriptions = append(req.PreviousDescriptions, d.Text)
		used[Normalize(d.Text)] = struct{}{}
	}
	round := e.state.CurrentRound
	e.mu.Unlock()

	text := e.botDescription(ctx, bot, req, round)
	text = e.dedupe(text, used)

	e.mu.Lock()
	if gen != e.generation || ep != e.epoch || e.state.Phase != PhasePlaying {
		// Skipped or reset while the bot was thinking; drop the result.
		e.mu.Unlock()
		return
	}
	current := e.currentPlayerLocked()
	if current.Name != bot.Name {
		e.mu.Unlock()
		return
	}
	leaked := e.recordDescriptionLocked(current, text)
	e.mu.Unlock()
	e.notify()

	e.afterDescription(ctx, gen, ep, bot.Name, text, leaked)
}

func (e *Engine) dedupe(text string, used map[string]struct{}) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return dedupeSuggestion(e.rng, text, used)
}

// botDescription asks the suggestion service, with two extra behaviors:
// an impostor bot in a later round first tries to deduce the secret word
// and plays it when confident, and every failure falls back to the local
// phrase pool.
func (e *Engine) botDescription(ctx context.Context, bot GamePlayer, req DescribeRequest, round int) string {
	if e.suggester == nil {
		return e.localFallback(req)
	}

	sctx, cancel := context.WithTimeout(ctx, suggestTimeout)
	defer cancel()

	if bot.IsImpostor && round >= 2 {
		guess, err := e.suggester.DeduceWord(sctx, DeduceRequest{
			Hint:                 req.Hint,
			PreviousDescriptions: req.PreviousDescriptions,
		})
		if err == nil && Normalize(guess) == Normalize(bot.Word) {
			// The bot thinks it cracked the word; saying it is the
			// impostor's winning move.
			return guess
		}
	}

	text, err := e.suggester.SuggestDescription(sctx, req)
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			e.log.Warnf("suggestion failed for game %s: %v", e.id, err)
		}
		return e.localFallback(req)
	}
	return strings.TrimSpace(text)
}

func (e *Engine) localFallback(req DescribeRequest) string {
	if e.obs != nil {
		e.obs.SuggestionFallback()
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fallbackDescription(e.rng, req)
}

// SkipTurn records "(pasó)" for the current player and moves on. It also
// works while a bot's suggestion call is pending: the pending pipeline
// is invalidated and its late result discarded.
func (e *Engine) SkipTurn(playerName string) error {
	e.mu.Lock()
	if e.state.Phase != PhasePlaying {
		e.mu.Unlock()
		return ErrWrongPhase
	}
	current := e.currentPlayerLocked()
	if current.Name != playerName {
		e.mu.Unlock()
		return fmt.Errorf("%w: it is %s's turn", ErrNotYourTurn, current.Name)
	}
	if e.busy && !current.IsBot {
		e.mu.Unlock()
		return ErrEngineBusy
	}

	// Invalidate any in-flight bot pipeline for this turn.
	e.epoch++
	e.state.Descriptions = append(e.state.Descriptions, Description{
		PlayerName: current.Name,
		Text:       skippedTurnText,
		Round:      e.state.CurrentRound,
	})
	e.busy = true
	gen, ep, ctx := e.generation, e.epoch, e.ctx
	e.mu.Unlock()
	e.notify()

	go func() {
		e.announce(ctx, fmt.Sprintf("%s pasa su turno", current.Name))
		next, ok := e.advanceTurn(gen, ep)
		if !ok {
			return
		}
		e.runTurnLoop(ctx, gen, next)
	}()
	return nil
}

// --- voting phase ---

// StartVoting moves to the voting phase. Allowed only at a round
// boundary, once every player has spoken in the round just finished. It
// works even while the engine is announcing the next round or running a
// bot's turn: the pending pipeline is invalidated and its late result
// discarded, so a table can always call the vote between rounds.
func (e *Engine) StartVoting() error {
	e.mu.Lock()
	if e.state.Phase != PhasePlaying {
		e.mu.Unlock()
		return ErrWrongPhase
	}
	done := len(e.state.Descriptions)
	if done == 0 || done%len(e.state.Players) != 0 {
		e.mu.Unlock()
		return ErrVotingNotReady
	}
	if err := e.setPhaseLocked(PhaseVoting); err != nil {
		e.mu.Unlock()
		return err
	}
	e.state.Votes = nil
	e.state.VotingOrder = votingOrderFor(e.state.Players)
	e.state.CurrentVoterIndex = 0
	e.busy = true
	e.epoch++
	gen, ep, ctx := e.generation, e.epoch, e.ctx
	e.mu.Unlock()
	e.notify()

	go func() {
		e.announce(ctx, "¡Es hora de votar! ¿Quién es el impostor?")
		e.runVoterLoop(ctx, gen, ep)
	}()
	return nil
}

// runVoterLoop hands control to a human voter or runs a bot vote.
func (e *Engine) runVoterLoop(ctx context.Context, gen, ep uint64) {
	e.mu.Lock()
	if gen != e.generation || ep != e.epoch || e.state.Phase != PhaseVoting {
		e.mu.Unlock()
		return
	}
	voter, ok := e.playerByNameLocked(e.state.VotingOrder[e.state.CurrentVoterIndex])
	e.mu.Unlock()
	if !ok {
		return
	}

	if !voter.IsBot {
		e.finishPipeline(gen, ep)
		return
	}

	e.sleep(ctx, pauseBotVote)
	target := e.botVote(ctx, voter)
	e.castVote(ctx, gen, ep, voter, target)
}

// botVote asks the suggestion service who to accuse, fuzzy-matches the
// reply against real names, and falls back to a uniform random choice.
func (e *Engine) botVote(ctx context.Context, voter GamePlayer) string {
	e.mu.Lock()
	names := make([]string, 0, len(e.state.Players)-1)
	for _, p := range e.state.Players {
		if p.Name != voter.Name {
			names = append(names, p.Name)
		}
	}
	req := VoteRequest{
		Players:         names,
		Descriptions:    append([]Description(nil), e.state.Descriptions...),
		VoterName:       voter.Name,
		VoterIsImpostor: voter.IsImpostor,
		Word:            e.state.Word,
	}
	players := append([]GamePlayer(nil), e.state.Players...)
	e.mu.Unlock()

	if e.suggester != nil {
		sctx, cancel := context.WithTimeout(ctx, suggestTimeout)
		reply, err := e.suggester.SuggestVote(sctx, req)
		cancel()
		if err == nil {
			if name, ok := matchPlayerName(reply, names); ok {
				return name
			}
			e.log.Warnf("bot vote for game %s: unrecognized name %q", e.id, reply)
		} else {
			e.log.Warnf("bot vote failed for game %s: %v", e.id, err)
		}
	}
	if e.obs != nil {
		e.obs.SuggestionFallback()
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fallbackVote(e.rng, voter.Name, players)
}

// SubmitVote records the human vote for whoever's turn it is to vote.
func (e *Engine) SubmitVote(voterName, votedForName string) error {
	e.mu.Lock()
	if e.state.Phase != PhaseVoting {
		e.mu.Unlock()
		return ErrWrongPhase
	}
	if e.busy {
		e.mu.Unlock()
		return ErrEngineBusy
	}
	if e.state.CurrentVoterIndex >= len(e.state.VotingOrder) ||
		e.state.VotingOrder[e.state.CurrentVoterIndex] != voterName {
		e.mu.Unlock()
		return ErrNotYourVote
	}
	voter, _ := e.playerByNameLocked(voterName)
	if _, ok := e.playerByNameLocked(votedForName); !ok {
		e.mu.Unlock()
		return ErrUnknownPlayer
	}
	if votedForName == voterName {
		e.mu.Unlock()
		return ErrSelfVote
	}
	e.busy = true
	gen, ep, ctx := e.generation, e.epoch, e.ctx
	e.mu.Unlock()

	go e.castVote(ctx, gen, ep, voter, votedForName)
	return nil
}

// castVote appends the vote, advances the voter cursor, and either
// continues with the next voter or finishes the game. The vote is
// recorded before its narration and before the next voter is evaluated.
func (e *Engine) castVote(ctx context.Context, gen, ep uint64, voter GamePlayer, target string) {
	e.mu.Lock()
	if gen != e.generation || ep != e.epoch || e.state.Phase != PhaseVoting {
		e.mu.Unlock()
		return
	}
	if e.state.CurrentVoterIndex >= len(e.state.VotingOrder) ||
		e.state.VotingOrder[e.state.CurrentVoterIndex] != voter.Name {
		e.mu.Unlock()
		return
	}
	e.state.Votes = append(e.state.Votes, Vote{
		VoterName:    voter.Name,
		VotedForName: target,
		IsBot:        voter.IsBot,
	})
	e.state.CurrentVoterIndex++
	if e.obs != nil {
		e.obs.VoteRecorded()
	}

	finished := e.state.CurrentVoterIndex >= len(e.state.VotingOrder)
	if finished {
		if err := e.setPhaseLocked(PhaseFinished); err != nil {
			e.log.Errorf("game %s: finish transition rejected: %v", e.id, err)
		}
	}
	e.mu.Unlock()
	e.notify()

	e.announce(ctx, fmt.Sprintf("%s vota por %s", voter.Name, target))

	if !finished {
		e.runVoterLoop(ctx, gen, ep)
		return
	}

	e.announce(ctx, "¡Votación terminada!")
	e.sleep(ctx, pauseBeforeResult)
	e.announceResult(ctx, gen)
	e.finishPipeline(gen, ep)
}

// announceResult voices the outcome exactly once per game, no matter how
// many times the finished state is observed.
func (e *Engine) announceResult(ctx context.Context, gen uint64) {
	e.mu.Lock()
	if gen != e.generation || e.resultAnnounced || e.state.Phase != PhaseFinished {
		e.mu.Unlock()
		return
	}
	e.resultAnnounced = true
	result, ok := e.resultLocked()
	e.mu.Unlock()
	if !ok {
		return
	}

	if e.obs != nil {
		e.obs.GameFinished(PhaseFinished)
	}
	if result.ImpostorCaught {
		e.announce(ctx, fmt.Sprintf("¡%s fue descubierto! Era el impostor. ¡Los inocentes ganan!", result.Accused))
	} else {
		e.announce(ctx, fmt.Sprintf("¡%s era inocente! El impostor gana la partida.", result.Accused))
	}
}

// Result tallies votes once the game is finished.
func (e *Engine) Result() (Result, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Phase != PhaseFinished {
		return Result{}, false
	}
	return e.resultLocked()
}

func (e *Engine) resultLocked() (Result, bool) {
	tally := tallyVotes(e.state.Votes)
	if len(tally) == 0 {
		return Result{}, false
	}
	accused := tally[0].Name
	caught := false
	if p, ok := e.playerByNameLocked(accused); ok {
		caught = p.IsImpostor
	}
	return Result{Tally: tally, Accused: accused, ImpostorCaught: caught}, true
}

// --- lifecycle ---

// SetMuted toggles narration. Muting cancels any in-flight announcement
// so the turn loop unblocks immediately.
func (e *Engine) SetMuted(muted bool) {
	e.mu.Lock()
	e.state.Muted = muted
	e.mu.Unlock()
	e.narrator.SetMuted(muted)
	if muted {
		e.narrator.Cancel()
	}
	e.notify()
}

// Reset re-rolls everything transient: word, roles, turn order,
// transcript, votes, phase. The roster and configuration survive.
// In-flight narration and bot work are canceled and their late results
// discarded via the generation guard.
func (e *Engine) Reset() error {
	e.mu.Lock()
	e.cancel()
	e.narrator.Cancel()
	e.generation++
	e.epoch++
	e.busy = false

	if err := e.roll(); err != nil {
		e.mu.Unlock()
		return err
	}
	e.ctx, e.cancel = context.WithCancel(context.Background())

	startPlaying := e.state.Phase == PhasePlaying
	gen, ep, ctx := e.generation, e.epoch, e.ctx
	if startPlaying {
		e.busy = true
	}
	e.mu.Unlock()
	e.notify()

	if startPlaying {
		go e.runTurnLoop(ctx, gen, ep)
	}
	return nil
}

// Close abandons the game: cancels narration and marks every pipeline
// stale. The engine is unusable afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	e.cancel()
	e.generation++
	e.epoch++
	e.busy = false
	e.mu.Unlock()
	e.narrator.Cancel()
}
