// Package princess implements a small turn-based elimination card game:
// everyone holds one hidden card, stabby cards steal them, and whoever holds
// the princess when the deck runs out wins.
package princess

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/antonvlasov/gameroom-server/internal/game"
)

// Type is the room-type tag this game registers under.
const Type = "princess"

// Card is one of the three card kinds.
type Card string

const (
	CardPrincess Card = "princess"
	CardProtect  Card = "protect"
	CardStabby   Card = "stabby"
)

// Phase gates which actions are currently valid.
type Phase string

const (
	PhaseBeforeTurn     Phase = "before_turn"
	PhaseTurn           Phase = "turn"
	PhaseDecidingStabby Phase = "deciding_stabby"
	PhaseEnded          Phase = "ended"
)

// pendingSwap records an unresolved stab: which player lost their card and
// which card they lost, so the follow-up (or a cancel) can be validated
// instead of guessed from hand sizes.
type pendingSwap struct {
	target int
	card   Card
}

// Game holds one running instance. The owning room serializes all calls.
type Game struct {
	players []string
	current int
	phase   Phase

	downHands [][]Card // hidden cards, exposed in state, hidden client-side
	upHands   [][]Card // face-up protection cards
	deck      []Card
	discard   []Card

	pending *pendingSwap
	winner  string

	log []string
}

// New shuffles the player order, builds and shuffles the deck, and deals one
// hidden card to each player.
func New(players []string) game.Game {
	ps := slices.Clone(players)
	rand.Shuffle(len(ps), func(i, j int) {
		ps[i], ps[j] = ps[j], ps[i]
	})

	deck := buildDeck(len(ps))
	rand.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})

	return newDealt(ps, deck)
}

// buildDeck sizes the deck relative to the player count: one princess, half a
// protect per player, two stabbies per player.
func buildDeck(players int) []Card {
	deck := []Card{CardPrincess}
	for i := 0; i < (players+1)/2; i++ {
		deck = append(deck, CardProtect)
	}
	for i := 0; i < (players+1)*2; i++ {
		deck = append(deck, CardStabby)
	}
	return deck
}

// newDealt finishes construction from an already-ordered deck. Split out so
// tests can rig a deterministic deal.
func newDealt(players []string, deck []Card) *Game {
	g := &Game{
		players:   players,
		phase:     PhaseBeforeTurn,
		deck:      deck,
		downHands: make([][]Card, len(players)),
		upHands:   make([][]Card, len(players)),
		log: []string{
			"Waiting for players...",
			"Shuffling...",
			"Game started",
		},
	}
	for i := range players {
		g.downHands[i] = []Card{g.draw()}
	}
	return g
}

// draw pops the top of the deck. Callers check for emptiness first.
func (g *Game) draw() Card {
	card := g.deck[len(g.deck)-1]
	g.deck = g.deck[:len(g.deck)-1]
	return card
}

// Status implements game.Game.
func (g *Game) Status() string {
	if g.phase == PhaseEnded {
		return "ended"
	}
	return "in game"
}

// Ended implements game.Game.
func (g *Game) Ended() bool {
	return g.phase == PhaseEnded
}

// Winner reports who held the princess, once the game has ended.
func (g *Game) Winner() (string, bool) {
	if g.phase != PhaseEnded || g.winner == "" {
		return "", false
	}
	return g.winner, true
}

type deckView struct {
	Name  string `json:"name"`
	Card  *Card  `json:"card"`
	Count int    `json:"count"`
}

type stateView struct {
	Players   []string          `json:"players"`
	Current   string            `json:"current"`
	Phase     Phase             `json:"phase"`
	DownHands map[string][]Card `json:"down_hands"`
	UpHands   map[string][]Card `json:"up_hands"`
	Decks     []deckView        `json:"decks"`
	Log       []string          `json:"log"`
	CardImgs  map[string]string `json:"card_imgs"`
}

// State implements game.Game.
func (g *Game) State() any {
	down := make(map[string][]Card, len(g.players))
	up := make(map[string][]Card, len(g.players))
	for i, name := range g.players {
		down[name] = slices.Clone(g.downHands[i])
		up[name] = slices.Clone(g.upHands[i])
	}

	var discardTop *Card
	if len(g.discard) > 0 {
		discardTop = &g.discard[len(g.discard)-1]
	}

	current := ""
	if len(g.players) > 0 {
		current = g.players[g.current]
	}

	return stateView{
		Players:   slices.Clone(g.players),
		Current:   current,
		Phase:     g.phase,
		DownHands: down,
		UpHands:   up,
		Decks: []deckView{
			{Name: "deck", Card: nil, Count: len(g.deck)},
			{Name: "discard", Card: discardTop, Count: len(g.discard)},
		},
		Log: slices.Clone(g.log),
		CardImgs: map[string]string{
			"null":     "/static/card-back.png",
			"princess": "/static/card-princess.png",
			"protect":  "/static/card-protect.png",
			"stabby":   "/static/card-stabby.png",
		},
	}
}

type action struct {
	Action string `json:"action"`
	User   string `json:"user"`
	Deck   string `json:"deck,omitempty"`
	Card   Card   `json:"card,omitempty"`
	Target string `json:"target,omitempty"`
}

// Action implements game.Game.
func (g *Game) Action(payload json.RawMessage) error {
	var act action
	if err := json.Unmarshal(payload, &act); err != nil {
		return fmt.Errorf("malformed game action: %w", err)
	}

	switch {
	case act.Action == "draw" && g.phase == PhaseBeforeTurn:
		return g.actDraw(act)
	case act.Action == "play" && g.phase == PhaseBeforeTurn:
		// Let the user know they messed up, because this happens a lot.
		user, err := g.currentPlayer(act.User)
		if err != nil {
			return err
		}
		g.log = append(g.log, fmt.Sprintf("%s needs to draw..", g.players[user]))
		return nil
	case act.Action == "play" && g.phase == PhaseTurn:
		return g.actPlay(act)
	case act.Action == "play" && g.phase == PhaseDecidingStabby:
		return g.actDecide(act)
	case act.Action == "cancel" && g.phase == PhaseDecidingStabby:
		return g.actCancel(act)
	default:
		return fmt.Errorf("invalid action %q during phase %q", act.Action, g.phase)
	}
}

func (g *Game) actDraw(act action) error {
	user, err := g.currentPlayer(act.User)
	if err != nil {
		return err
	}
	if act.Deck != "deck" {
		return fmt.Errorf("unknown deck %q", act.Deck)
	}
	if len(g.deck) == 0 {
		return fmt.Errorf("attempted to draw from empty deck")
	}

	g.downHands[user] = append(g.downHands[user], g.draw())
	g.phase = PhaseTurn
	return nil
}

func (g *Game) actPlay(act action) error {
	user, err := g.currentPlayer(act.User)
	if err != nil {
		return err
	}
	target, err := g.findPlayer(act.Target)
	if err != nil {
		return err
	}

	if act.Card == CardPrincess {
		return fmt.Errorf("the princess can't be played")
	}
	held := slices.Index(g.downHands[user], act.Card)
	if held < 0 {
		return fmt.Errorf("player %q doesn't have card %q", act.User, act.Card)
	}

	switch act.Card {
	case CardProtect:
		g.upHands[target] = append(g.upHands[target], act.Card)
	case CardStabby:
		if target != user {
			if slices.Contains(g.upHands[target], CardProtect) {
				g.log = append(g.log, fmt.Sprintf("%s is protected...", g.players[target]))
				return nil
			}
			if len(g.downHands[target]) == 0 {
				return fmt.Errorf("player %q has no cards to steal", act.Target)
			}

			// Steal the target's hidden card; the swap resolves next action.
			g.downHands[user] = slices.Delete(g.downHands[user], held, held+1)
			stolen := g.downHands[target][len(g.downHands[target])-1]
			g.downHands[target] = g.downHands[target][:len(g.downHands[target])-1]
			g.downHands[user] = append(g.downHands[user], stolen)

			g.log = append(g.log, fmt.Sprintf("%s played %s on %s",
				g.players[user], act.Card, g.players[target]))
			g.pending = &pendingSwap{target: target, card: stolen}
			g.phase = PhaseDecidingStabby
			return nil
		}
		// Stabbing yourself is how you discard.
		g.discard = append(g.discard, act.Card)
	default:
		return fmt.Errorf("unknown card %q", act.Card)
	}

	g.downHands[user] = slices.Delete(g.downHands[user], held, held+1)
	g.log = append(g.log, fmt.Sprintf("%s played %s on %s",
		g.players[user], act.Card, g.players[target]))
	g.endTurn()
	return nil
}

// actDecide resolves the pending swap: the stabber hands one of their held
// cards to the player they stole from.
func (g *Game) actDecide(act action) error {
	user, err := g.currentPlayer(act.User)
	if err != nil {
		return err
	}
	target, err := g.findPlayer(act.Target)
	if err != nil {
		return err
	}
	if g.pending == nil || target != g.pending.target {
		return fmt.Errorf("player %q is not the swapped player", act.Target)
	}

	held := slices.Index(g.downHands[user], act.Card)
	if held < 0 {
		return fmt.Errorf("player %q doesn't have card %q", act.User, act.Card)
	}
	g.downHands[user] = slices.Delete(g.downHands[user], held, held+1)
	g.downHands[target] = append(g.downHands[target], act.Card)

	g.pending = nil
	g.endTurn()
	return nil
}

// actCancel abandons the pending swap and gives the stolen card back.
func (g *Game) actCancel(act action) error {
	user, err := g.currentPlayer(act.User)
	if err != nil {
		return err
	}

	held := slices.Index(g.downHands[user], g.pending.card)
	if held < 0 {
		return fmt.Errorf("stolen card %q is gone", g.pending.card)
	}
	g.downHands[user] = slices.Delete(g.downHands[user], held, held+1)
	g.downHands[g.pending.target] = append(g.downHands[g.pending.target], g.pending.card)

	g.log = append(g.log, fmt.Sprintf("%s cancelled the swap", g.players[user]))
	g.pending = nil
	g.endTurn()
	return nil
}

// endTurn resolves the game when the deck is out, otherwise passes the turn
// and expires the next player's protection.
func (g *Game) endTurn() {
	if len(g.deck) == 0 {
		winner := -1
		for i, hand := range g.downHands {
			if slices.Contains(hand, CardPrincess) {
				winner = i
				break
			}
		}
		if winner >= 0 {
			g.winner = g.players[winner]
			g.log = append(g.log,
				fmt.Sprintf("%s has the Princess", g.winner),
				fmt.Sprintf("%s wins!", g.winner))
		} else {
			g.log = append(g.log, "No one won??", "How did you pull that off?")
		}
		g.phase = PhaseEnded
		return
	}

	g.current = (g.current + 1) % len(g.players)
	g.phase = PhaseBeforeTurn

	// Protection lasts until your own turn comes around.
	g.discard = append(g.discard, g.upHands[g.current]...)
	g.upHands[g.current] = g.upHands[g.current][:0]
}

// currentPlayer resolves a player name and checks it is their turn.
func (g *Game) currentPlayer(name string) (int, error) {
	user, err := g.findPlayer(name)
	if err != nil {
		return 0, err
	}
	if user != g.current {
		return 0, fmt.Errorf("not your turn, %s", name)
	}
	return user, nil
}

func (g *Game) findPlayer(name string) (int, error) {
	i := slices.Index(g.players, name)
	if i < 0 {
		return 0, fmt.Errorf("player %q is not playing", name)
	}
	return i, nil
}
