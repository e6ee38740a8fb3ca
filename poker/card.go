package poker

import (
	"fmt"
	"strings"
)

type Suit int32

const (
	Hearts Suit = iota
	Clubs
	Spades
	Diamonds
)

var suitToChar = map[Suit]byte{
	Hearts:   'h',
	Clubs:    'c',
	Spades:   's',
	Diamonds: 'd',
}

var charToSuit = map[byte]Suit{
	'h': Hearts,
	'c': Clubs,
	's': Spades,
	'd': Diamonds,
}

var prettySuits = map[Suit]string{
	Spades:   "♠",
	Hearts:   "❤",
	Diamonds: "♦",
	Clubs:    "♣",
}

// Rank characters indexed by value-2. T stands for 10.
var strRanks = "23456789TJQKA"

var charToValue = map[byte]int32{}

func init() {
	for i := range strRanks {
		charToValue[strRanks[i]] = int32(i) + 2
	}
}

// Card is an immutable suit/value pair. Value is 2-10 for the number
// cards and 11, 12, 13, 14 for J, Q, K, A.
type Card struct {
	Suit  Suit
	Value int32
}

// NewCard parses the two character form, e.g. "Kh", "Td", "As".
func NewCard(s string) Card {
	return Card{
		Suit:  charToSuit[s[1]],
		Value: charToValue[s[0]],
	}
}

func (c Card) String() string {
	return string(strRanks[c.Value-2]) + string(suitToChar[c.Suit])
}

func (c Card) PrettyPrint() string {
	return fmt.Sprintf("%c%s", strRanks[c.Value-2], prettySuits[c.Suit])
}

func (c Card) MarshalJSON() ([]byte, error) {
	return []byte("\"" + c.String() + "\""), nil
}

func (c *Card) UnmarshalJSON(b []byte) error {
	if len(b) != 4 {
		return fmt.Errorf("invalid card %s", string(b))
	}
	s := string(b[1:3])
	if _, ok := charToValue[s[0]]; !ok {
		return fmt.Errorf("invalid card rank %c", s[0])
	}
	if _, ok := charToSuit[s[1]]; !ok {
		return fmt.Errorf("invalid card suit %c", s[1])
	}
	*c = NewCard(s)
	return nil
}

func CardsToString(cards []Card) string {
	var b strings.Builder
	b.WriteString("[")
	for i, card := range cards {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(card.String())
	}
	b.WriteString("]")
	return b.String()
}
