package battle

import (
	"context"
	"log"
	"math/rand"
	"time"

	"triviamon/internal/engine"
	"triviamon/internal/model"
)

// Outbound event types pushed through the Broadcaster
const (
	EvtQuestionIssued = "question_issued"
	EvtTurnResult     = "turn_result"
	EvtMatchEnded     = "match_ended"
	EvtMatchPaused    = "match_paused"
	EvtMatchResumed   = "match_resumed"
	EvtSnapshot       = "snapshot"
	EvtError          = "error"
)

// Score increments
const (
	scoreCorrectAnswer = 10
	scoreFaintBonus    = 25
	scoreWinBonus      = 50
)

// How long a terminal match keeps answering late commands before its
// goroutine exits
const terminalLinger = 5 * time.Second

const providerTimeout = 5 * time.Second

type cmdKind int

const (
	cmdSubmit cmdKind = iota
	cmdForfeit
	cmdConnect
	cmdDisconnect
	cmdDeadline
	cmdGraceExpired
	cmdSnapshot
)

// command is one inbound message for the match's owning goroutine. All
// state transitions flow through the inbox so they are strictly
// serialized per match.
type command struct {
	kind        cmdKind
	playerID    string
	turnNumber  int
	answerIndex int
	action      model.Action
	epoch       int
	reply       chan error
	snap        chan *model.Match
}

// submission is one side's accepted answer+action for the pending question
type submission struct {
	answerIndex int
	action      model.Action
	noopItem    bool // item misuse: action consumed but has no effect
	timedOut    bool
}

// match wraps the authoritative state with its single owning goroutine.
// Nothing outside run() touches the fields below inbox.
type match struct {
	deps  *deps
	inbox chan command
	done  chan struct{}

	state        *model.Match
	subs         [2]*submission
	connected    [2]bool
	asked        []string
	question     *model.Question
	epoch        int
	deadline     *time.Timer
	grace        *time.Timer
	pausedRemain time.Duration
	initialHP    [2][]int
	initialItems [2]map[string]int
}

func newMatch(state *model.Match, d *deps) *match {
	m := &match{
		deps:  d,
		inbox: make(chan command, 32),
		done:  make(chan struct{}),
		state: state,
	}
	for i := range state.Sides {
		hps := make([]int, len(state.Sides[i].Roster))
		for j := range state.Sides[i].Roster {
			hps[j] = state.Sides[i].Roster[j].HP
		}
		m.initialHP[i] = hps
		items := make(map[string]int, len(state.Sides[i].Items))
		for k, v := range state.Sides[i].Items {
			items[k] = v
		}
		m.initialItems[i] = items
	}
	return m
}

// post delivers a command to the owning goroutine, or answers ErrMatchOver
// once the match has shut down
func (m *match) post(c command) {
	// after done closes a buffered inbox send could still succeed with
	// nobody left to serve it, so the shutdown path must win
	select {
	case <-m.done:
		m.answerShutdown(c)
		return
	default:
	}
	select {
	case m.inbox <- c:
	case <-m.done:
		m.answerShutdown(c)
	}
}

// answerShutdown resolves a command posted to a match that has already
// shut down. The state is immutable once done closes.
func (m *match) answerShutdown(c command) {
	if c.reply != nil {
		c.reply <- ErrMatchOver
	}
	if c.snap != nil {
		c.snap <- m.state.Clone()
	}
}

func (m *match) run() {
	// abandon the match if both players never show up
	m.grace = time.AfterFunc(m.deps.cfg.ReconnectGrace, func() {
		m.post(command{kind: cmdGraceExpired})
	})

	for {
		cmd := <-m.inbox
		m.handle(cmd)
		if m.state.Terminal() {
			m.finish()
			return
		}
	}
}

func (m *match) handle(c command) {
	switch c.kind {
	case cmdSnapshot:
		c.snap <- m.state.Clone()
	case cmdConnect:
		m.handleConnect(c.playerID)
	case cmdDisconnect:
		m.handleDisconnect(c.playerID)
	case cmdSubmit:
		c.reply <- m.handleSubmit(c)
	case cmdForfeit:
		c.reply <- m.handleForfeit(c.playerID)
	case cmdDeadline:
		m.handleDeadline(c.epoch)
	case cmdGraceExpired:
		m.handleGraceExpired()
	}
}

// --- Connection lifecycle ----------------------------------------------

func (m *match) handleConnect(playerID string) {
	side := m.state.SideOf(playerID)
	if side < 0 {
		return
	}
	m.connected[side] = true

	switch m.state.Status {
	case model.MatchWaiting:
		if m.connected[0] && m.connected[1] {
			m.stopGrace()
			m.beginTurn()
		}
	case model.MatchPaused:
		if m.connected[0] && m.connected[1] {
			m.stopGrace()
			m.state.Status = model.MatchInProgress
			if m.state.PendingQuestion != nil {
				remain := m.pausedRemain
				if remain <= 0 {
					remain = time.Second
				}
				m.state.PendingQuestion.Deadline = time.Now().Add(remain)
				m.startDeadline(remain, m.epoch)
			}
			m.broadcastMatch(EvtMatchResumed, map[string]string{"matchId": m.state.ID})
			log.Printf("match %s resumed", m.state.ID)
		}
	}

	m.sendSnapshot(playerID)
}

func (m *match) handleDisconnect(playerID string) {
	side := m.state.SideOf(playerID)
	if side < 0 || !m.connected[side] {
		return
	}
	m.connected[side] = false

	if m.state.Status != model.MatchInProgress {
		return
	}

	m.state.Status = model.MatchPaused
	if m.state.PendingQuestion != nil {
		m.pausedRemain = time.Until(m.state.PendingQuestion.Deadline)
		if m.pausedRemain < time.Second {
			m.pausedRemain = time.Second
		}
	}
	m.stopDeadline()
	m.startGrace()
	log.Printf("match %s paused: player %s disconnected", m.state.ID, playerID)
	m.broadcastMatch(EvtMatchPaused, &model.MatchPausedPayload{
		MatchID:      m.state.ID,
		Disconnected: playerID,
		GraceMS:      m.deps.cfg.ReconnectGrace.Milliseconds(),
	})
}

func (m *match) handleGraceExpired() {
	switch m.state.Status {
	case model.MatchWaiting:
		m.endMatch(-1, model.EndAbandoned)
	case model.MatchPaused:
		switch {
		case !m.connected[0] && !m.connected[1]:
			m.endMatch(-1, model.EndAbandoned)
		case !m.connected[0]:
			m.endMatch(1, model.EndDisconnect)
		case !m.connected[1]:
			m.endMatch(0, model.EndDisconnect)
		}
	}
	// a stale grace timer firing after a resume is a no-op
}

// --- Turn flow ----------------------------------------------------------

func (m *match) beginTurn() {
	m.subs = [2]*submission{}
	m.state.TurnNumber++
	m.state.Status = model.MatchInProgress
	m.issueQuestion()
}

// issueQuestion selects the next gating question and arms the deadline.
// The easier player's grade bounds the filter so neither side is priced
// out of the match.
func (m *match) issueQuestion() {
	m.stopDeadline()

	grade := m.state.Sides[0].GradeLevel
	if g := m.state.Sides[1].GradeLevel; g < grade {
		grade = g
	}

	ctx, cancel := context.WithTimeout(context.Background(), providerTimeout)
	defer cancel()

	players := []string{m.state.Sides[0].PlayerID, m.state.Sides[1].PlayerID}
	q, err := m.deps.questions.NextQuestion(ctx, grade, players, m.asked)
	if err != nil {
		log.Printf("match %s: question fetch failed: %v", m.state.ID, err)
	}
	if q == nil {
		// bank exhausted for the filter: allow repeats within the match
		m.asked = m.asked[:0]
		q, err = m.deps.questions.NextQuestion(ctx, grade, nil, nil)
		if err != nil {
			log.Printf("match %s: question refetch failed: %v", m.state.ID, err)
		}
	}
	if q == nil {
		log.Printf("match %s: question bank empty, abandoning", m.state.ID)
		m.endMatch(-1, model.EndAbandoned)
		return
	}

	m.question = q
	m.asked = append(m.asked, q.ID)
	m.epoch++
	deadline := time.Now().Add(m.deps.cfg.QuestionDeadline)
	m.state.PendingQuestion = &model.PendingQuestion{
		QuestionID: q.ID,
		Epoch:      m.epoch,
		Deadline:   deadline,
	}
	m.startDeadline(m.deps.cfg.QuestionDeadline, m.epoch)

	if err := m.deps.questions.MarkSeen(ctx, players, q.ID); err != nil {
		log.Printf("match %s: mark seen failed: %v", m.state.ID, err)
	}

	m.broadcastMatch(EvtQuestionIssued, &model.QuestionIssuedPayload{
		MatchID:    m.state.ID,
		TurnNumber: m.state.TurnNumber,
		Question:   q.Public(),
		DeadlineMS: m.deps.cfg.QuestionDeadline.Milliseconds(),
	})
}

func (m *match) handleSubmit(c command) error {
	side := m.state.SideOf(c.playerID)
	if side < 0 {
		return ErrNotParticipant
	}
	if m.state.Terminal() {
		return ErrMatchOver
	}
	if m.state.Status == model.MatchPaused {
		return ErrMatchPaused
	}
	if m.state.Status != model.MatchInProgress || m.state.PendingQuestion == nil {
		return ErrNoPendingQuestion
	}
	if c.turnNumber != m.state.TurnNumber {
		return ErrStaleTurn
	}
	if m.subs[side] != nil {
		return ErrDuplicateSubmission
	}

	sub := &submission{answerIndex: c.answerIndex, action: c.action}
	var submitErr error

	switch c.action.Kind {
	case model.ActionForfeit:
		return m.handleForfeit(c.playerID)

	case model.ActionAttack:

	case model.ActionSwitch:
		target := c.action.SwitchTo
		roster := m.state.Sides[side].Roster
		if target < 0 || target >= len(roster) || roster[target].Fainted() || target == m.state.Sides[side].ActiveIdx {
			return ErrInvalidAction
		}

	case model.ActionUseItem:
		def, known := model.ItemCatalog[c.action.ItemID]
		owned := m.state.Sides[side].Items[c.action.ItemID] > 0
		if !known || !owned {
			// item misuse still consumes the turn as a no-op, so a bad
			// submission cannot be retried into a free extra action
			sub.noopItem = true
			submitErr = engine.ErrInvalidItem
			break
		}
		if def.Category == model.ItemJoker {
			return m.useJoker(side, sub)
		}

	default:
		return ErrInvalidAction
	}

	m.subs[side] = sub
	if m.subs[0] != nil && m.subs[1] != nil {
		m.resolveTurn()
	}
	return submitErr
}

// useJoker rerolls the pending question immediately. The caster's action
// is consumed; the opponent's submission (if any) is voided and they
// answer the fresh question instead.
func (m *match) useJoker(side int, sub *submission) error {
	caster := &m.state.Sides[side]
	opponent := &m.state.Sides[1-side]
	out, err := engine.ApplyItem(sub.action.ItemID, caster, opponent, m.state.TurnNumber)
	if err != nil {
		return err
	}
	// the caster's answer was for the discarded question and must not be
	// judged against the reissued one
	sub.answerIndex = -1
	m.subs[side] = sub
	m.subs[1-side] = nil
	log.Printf("match %s: %s", m.state.ID, out.Summary)
	m.issueQuestion()
	return nil
}

func (m *match) handleForfeit(playerID string) error {
	side := m.state.SideOf(playerID)
	if side < 0 {
		return ErrNotParticipant
	}
	if m.state.Terminal() {
		// forfeiting a finished match is a no-op
		return nil
	}
	m.endMatch(1-side, model.EndForfeit)
	return nil
}

func (m *match) handleDeadline(epoch int) {
	// stale timers from an earlier question or a paused match are ignored
	if epoch != m.epoch || m.state.Status != model.MatchInProgress || m.state.PendingQuestion == nil {
		return
	}
	m.resolveTurn()
}

// resolveTurn applies both sides' actions for the current turn window.
//
// Fixed, documented ordering:
//  1. Item and switch actions resolve first, turn owner's before the
//     other side's. A combatant fainted in this phase loses its attack.
//  2. Attack outcomes are computed simultaneously against post-phase-1
//     state, turn owner's rng draw first.
//  3. Attacks apply turn-owner-first, unless the owner's computed attack
//     would faint the defender, in which case the defender's attack
//     lands first. Both computed attacks always land (a simultaneous
//     exchange), so a fainting side still gets its final blow in.
//  4. Poison ticks, buffs expire, fainted actives auto-advance, terminal
//     conditions are checked, the turn owner flips, the next question is
//     issued.
//
// A player who never submitted is defaulted to an incorrect answer and a
// basic attack.
func (m *match) resolveTurn() {
	m.stopDeadline()
	m.state.PendingQuestion = nil

	turn := m.state.TurnNumber
	q := m.question
	rng := rand.New(rand.NewSource(m.state.TurnSeed + int64(turn)))

	for i := range m.subs {
		if m.subs[i] == nil {
			m.subs[i] = &submission{
				answerIndex: -1,
				action:      model.Action{Kind: model.ActionAttack},
				timedOut:    true,
			}
		}
	}

	var correct [2]bool
	var summary []string
	for i := range m.state.Sides {
		correct[i] = m.subs[i].answerIndex >= 0 && m.subs[i].answerIndex == q.CorrectIndex
		if correct[i] {
			m.state.Sides[i].Score += scoreCorrectAnswer
		}
		if m.subs[i].timedOut {
			summary = append(summary, m.state.Sides[i].PlayerID+" ran out of time")
		}
	}

	owner := m.state.TurnOwner
	order := [2]int{owner, 1 - owner}

	// phase 1: items and switches
	for _, s := range order {
		sub := m.subs[s]
		side := &m.state.Sides[s]
		switch sub.action.Kind {
		case model.ActionSwitch:
			side.ActiveIdx = sub.action.SwitchTo
			summary = append(summary, side.PlayerID+" sent out "+side.Active().Name)

		case model.ActionUseItem:
			if sub.noopItem {
				summary = append(summary, side.PlayerID+" fumbled an item and lost the turn")
				continue
			}
			def := model.ItemCatalog[sub.action.ItemID]
			if def.Category == model.ItemJoker {
				// already applied at submission time
				continue
			}
			out, err := engine.ApplyItem(sub.action.ItemID, side, &m.state.Sides[1-s], turn)
			if err != nil {
				// target became invalid since submission: turn consumed
				summary = append(summary, side.PlayerID+"'s item had no effect")
				continue
			}
			summary = append(summary, out.Summary)
			side.Score += out.DamageDealt
			if out.CaptureSuccess {
				m.state.Sides[s].Score += scoreFaintBonus
				summary = append(summary, side.PlayerID+" captured the opponent's pokemon")
				m.finishTurn(correct, summary, s, model.EndCaptured)
				return
			}
		}
	}

	// phase 2: attacks, computed simultaneously
	var outs [2]*engine.TurnOutcome
	for _, s := range order {
		sub := m.subs[s]
		if sub.action.Kind != model.ActionAttack {
			continue
		}
		att := m.state.Sides[s].Active()
		def := m.state.Sides[1-s].Active()
		if att == nil || att.Fainted() || def == nil || def.Fainted() {
			continue
		}
		outs[s] = engine.ResolveTurn(att, def, sub.action, correct[s], rng, m.deps.cfg.DamageJitterPercent, turn, s, 1-s)
	}

	applyOrder := order
	if outs[owner] != nil && outs[owner].DefenderFaints && outs[1-owner] != nil {
		applyOrder = [2]int{1 - owner, owner}
	}
	for _, s := range applyOrder {
		out := outs[s]
		if out == nil {
			continue
		}
		att := m.state.Sides[s].Active()
		def := m.state.Sides[1-s].Active()
		if out.Skipped {
			if out.WokeUp {
				att.ClearStatus(model.StatusAsleep)
			}
			summary = append(summary, out.Summary...)
			continue
		}
		def.HP += out.DefenderHPDelta
		def.ClampHP()
		m.state.Sides[s].Score += out.DamageDealt
		summary = append(summary, out.Summary...)
	}

	// end-of-turn ticks
	for s := range m.state.Sides {
		active := m.state.Sides[s].Active()
		if active == nil {
			continue
		}
		if chip := engine.PoisonTick(active); chip > 0 {
			active.HP -= chip
			active.ClampHP()
			summary = append(summary, active.Name+" took poison damage")
		}
		if active.BuffExpiryTurn != 0 && active.BuffExpiryTurn <= turn {
			active.AttackBuffPct = 0
			active.DefenseBuffPct = 0
			active.BuffExpiryTurn = 0
		}
	}

	// fainted actives award the opponent and auto-advance
	for s := range m.state.Sides {
		side := &m.state.Sides[s]
		active := side.Active()
		if active == nil || !active.Fainted() {
			continue
		}
		m.state.Sides[1-s].Score += scoreFaintBonus
		if next := side.NextAlive(); next >= 0 {
			side.ActiveIdx = next
			summary = append(summary, side.PlayerID+" sent out "+side.Roster[next].Name)
		}
	}

	exhausted0 := m.state.Sides[0].Exhausted()
	exhausted1 := m.state.Sides[1].Exhausted()
	switch {
	case exhausted0 && exhausted1:
		// simultaneous wipe: higher score takes it, tie is a draw
		winner := -1
		if m.state.Sides[0].Score > m.state.Sides[1].Score {
			winner = 0
		} else if m.state.Sides[1].Score > m.state.Sides[0].Score {
			winner = 1
		}
		m.finishTurn(correct, summary, winner, model.EndRosterExhausted)
		return
	case exhausted0:
		m.finishTurn(correct, summary, 1, model.EndRosterExhausted)
		return
	case exhausted1:
		m.finishTurn(correct, summary, 0, model.EndRosterExhausted)
		return
	}

	m.state.TurnOwner = 1 - owner
	m.broadcastTurnResult(correct, summary)
	m.beginTurn()
}

// finishTurn broadcasts the final turn result and moves the match to its
// terminal state
func (m *match) finishTurn(correct [2]bool, summary []string, winner int, reason model.EndReason) {
	m.broadcastTurnResult(correct, summary)
	m.endMatch(winner, reason)
}

func (m *match) endMatch(winner int, reason model.EndReason) {
	now := time.Now()
	if reason == model.EndAbandoned {
		m.state.Status = model.MatchAbandoned
	} else {
		m.state.Status = model.MatchCompleted
	}
	m.state.Winner = winner
	m.state.EndReason = reason
	m.state.EndedAt = &now
	m.state.PendingQuestion = nil
	if winner >= 0 {
		m.state.Sides[winner].Score += scoreWinBonus
	}
}

// --- Broadcast helpers --------------------------------------------------

func (m *match) broadcastTurnResult(correct [2]bool, summary []string) {
	payload := &model.TurnResultPayload{
		MatchID:    m.state.ID,
		TurnNumber: m.state.TurnNumber,
		Summary:    summary,
		NextOwner:  m.state.TurnOwner,
	}
	for i := range m.state.Sides {
		side := &m.state.Sides[i]
		delta := model.SideDelta{
			PlayerID:  side.PlayerID,
			ActiveIdx: side.ActiveIdx,
			Score:     side.Score,
		}
		if active := side.Active(); active != nil {
			delta.ActiveHP = active.HP
			delta.ActiveMaxHP = active.MaxHP
			delta.Statuses = active.Statuses
		}
		for j := range side.Roster {
			if side.Roster[j].Fainted() {
				delta.FaintedIdx = append(delta.FaintedIdx, j)
			}
		}
		c := correct[i]
		delta.AnswerCorrect = &c
		payload.Sides[i] = delta
	}
	m.broadcastMatch(EvtTurnResult, payload)
}

func (m *match) sendSnapshot(playerID string) {
	if m.deps.bc == nil {
		return
	}
	payload := &model.SnapshotPayload{Match: m.state.Clone()}
	if m.state.PendingQuestion != nil && m.question != nil {
		payload.Question = m.question.Public()
	}
	m.deps.bc.BroadcastToPlayer(m.state.ID, playerID, EvtSnapshot, payload)
}

func (m *match) broadcastMatch(msgType string, payload interface{}) {
	if m.deps.bc == nil {
		return
	}
	m.deps.bc.BroadcastToMatch(m.state.ID, msgType, payload)
}

// --- Timers -------------------------------------------------------------

func (m *match) startDeadline(d time.Duration, epoch int) {
	m.stopDeadline()
	m.deadline = time.AfterFunc(d, func() {
		m.post(command{kind: cmdDeadline, epoch: epoch})
	})
}

func (m *match) stopDeadline() {
	if m.deadline != nil {
		m.deadline.Stop()
		m.deadline = nil
	}
}

func (m *match) startGrace() {
	m.stopGrace()
	m.grace = time.AfterFunc(m.deps.cfg.ReconnectGrace, func() {
		m.post(command{kind: cmdGraceExpired})
	})
}

func (m *match) stopGrace() {
	if m.grace != nil {
		m.grace.Stop()
		m.grace = nil
	}
}

// --- Teardown -----------------------------------------------------------

// finish broadcasts the terminal event, hands final deltas to
// persistence, and keeps answering stragglers briefly before the
// goroutine exits
func (m *match) finish() {
	m.stopDeadline()
	m.stopGrace()

	winnerID := ""
	if m.state.Winner >= 0 {
		winnerID = m.state.Sides[m.state.Winner].PlayerID
	}
	m.broadcastMatch(EvtMatchEnded, &model.MatchEndedPayload{
		MatchID:    m.state.ID,
		TurnNumber: m.state.TurnNumber,
		Winner:     m.state.Winner,
		WinnerID:   winnerID,
		EndReason:  m.state.EndReason,
		ScoreDelta: [2]int{m.state.Sides[0].Score, m.state.Sides[1].Score},
	})

	m.persistResult()

	if m.deps.bc != nil {
		m.deps.bc.DisconnectMatch(m.state.ID)
	}
	m.deps.onTerminal(m.state.ID)
	close(m.done)

	linger := time.After(terminalLinger)
	for {
		select {
		case c := <-m.inbox:
			m.answerShutdown(c)
		case <-linger:
			// drain whatever squeezed into the buffer before leaving
			for {
				select {
				case c := <-m.inbox:
					m.answerShutdown(c)
				default:
					return
				}
			}
		}
	}
}

func (m *match) persistResult() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result := &model.MatchResult{
		MatchID:   m.state.ID,
		Winner:    m.state.Winner,
		EndReason: m.state.EndReason,
		PlayerIDs: [2]string{m.state.Sides[0].PlayerID, m.state.Sides[1].PlayerID},
		ScoreDelta: [2]int{
			m.state.Sides[0].Score,
			m.state.Sides[1].Score,
		},
		Turns:   m.state.TurnNumber,
		EndedAt: time.Now(),
	}
	if m.state.EndedAt != nil {
		result.EndedAt = *m.state.EndedAt
	}
	if err := m.deps.recorder.RecordResult(ctx, result); err != nil {
		log.Printf("match %s: record result failed: %v", m.state.ID, err)
	}

	for s := range m.state.Sides {
		side := &m.state.Sides[s]

		xp := m.deps.cfg.LossXP
		if m.state.Winner == s {
			xp = m.deps.cfg.WinXP
		}
		for j := range side.Roster {
			entry := &side.Roster[j]
			if delta := entry.HP - m.initialHP[s][j]; delta != 0 {
				if err := m.deps.roster.ApplyHPDelta(ctx, entry.PokemonID, delta); err != nil {
					log.Printf("match %s: hp delta for %s failed: %v", m.state.ID, entry.PokemonID, err)
				}
			}
			gain, err := m.deps.roster.ApplyXPGain(ctx, entry.PokemonID, xp)
			if err != nil {
				log.Printf("match %s: xp gain for %s failed: %v", m.state.ID, entry.PokemonID, err)
				continue
			}
			if gain != nil && gain.LeveledUp {
				log.Printf("match %s: %s leveled up to %d", m.state.ID, entry.PokemonID, gain.NewLevel)
			}
		}

		for itemID, had := range m.initialItems[s] {
			if used := had - side.Items[itemID]; used > 0 {
				if err := m.deps.inventory.ConsumeItem(ctx, side.PlayerID, itemID, used); err != nil {
					log.Printf("match %s: consume %s x%d for %s failed: %v", m.state.ID, itemID, used, side.PlayerID, err)
				}
			}
		}
	}
}
