package poker

import (
	crypto_rand "crypto/rand"
	"encoding/binary"
	"math/rand"
)

var fullDeck *Deck

func init() {
	fullDeck = &Deck{cards: initializeFullCards()}
}

// Deck holds the cards not yet dealt for one hand. A freshly
// constructed deck always carries all 52 unique cards.
type Deck struct {
	cards []Card
}

func newSeed() rand.Source {
	var b [8]byte
	_, err := crypto_rand.Read(b[:])
	if err != nil {
		panic("cannot seed math/rand package with cryptographically secure random number generator")
	}
	return rand.NewSource(int64(binary.LittleEndian.Uint64(b[:])))
}

// NewDeck returns a full shuffled deck. A nil source shuffles with a
// crypto-seeded generator.
func NewDeck(source rand.Source) *Deck {
	if source == nil {
		source = newSeed()
	}
	deck := &Deck{}
	deck.shuffle(rand.New(source))
	return deck
}

func NewDeckNoShuffle() *Deck {
	deck := &Deck{}
	deck.cards = make([]Card, len(fullDeck.cards))
	copy(deck.cards, fullDeck.cards)
	return deck
}

func (deck *Deck) shuffle(randGen *rand.Rand) {
	deck.cards = make([]Card, len(fullDeck.cards))
	copy(deck.cards, fullDeck.cards)
	for i := range deck.cards {
		loc := int(randGen.Uint32() % 52)
		deck.cards[i], deck.cards[loc] = deck.cards[loc], deck.cards[i]
	}
}

// Draw removes and returns the top n cards.
func (deck *Deck) Draw(n int) []Card {
	cards := make([]Card, n)
	copy(cards, deck.cards[:n])
	deck.cards = deck.cards[n:]
	return cards
}

func (deck *Deck) Remaining() int {
	return len(deck.cards)
}

func (deck *Deck) Empty() bool {
	return len(deck.cards) == 0
}

func (deck *Deck) PrettyPrint() string {
	return CardsToString(deck.cards)
}

func initializeFullCards() []Card {
	var cards []Card
	for _, rank := range strRanks {
		for _, suit := range "shdc" {
			cards = append(cards, NewCard(string(rank)+string(suit)))
		}
	}
	return cards
}
