package poker

import (
	"testing"
)

func TestNewDeckIsComplete(t *testing.T) {
	deck := NewDeck(nil)
	if deck.Remaining() != 52 {
		t.Fatalf("expected 52 cards, got %d", deck.Remaining())
	}

	seen := make(map[Card]bool)
	perSuit := make(map[Suit]int)
	perValue := make(map[int32]int)
	for _, card := range deck.Draw(52) {
		if seen[card] {
			t.Fatalf("duplicate card %s in deck", card)
		}
		seen[card] = true
		perSuit[card.Suit]++
		perValue[card.Value]++
	}

	for _, suit := range []Suit{Hearts, Clubs, Spades, Diamonds} {
		if perSuit[suit] != 13 {
			t.Errorf("suit %d has %d cards, want 13", suit, perSuit[suit])
		}
	}
	for value := int32(2); value <= 14; value++ {
		if perValue[value] != 4 {
			t.Errorf("value %d has %d cards, want 4", value, perValue[value])
		}
	}
}

func TestDrawShrinksDeck(t *testing.T) {
	deck := NewDeck(nil)
	dealt := deck.Draw(2)
	if deck.Remaining() != 50 {
		t.Fatalf("expected 50 cards after drawing 2, got %d", deck.Remaining())
	}
	for _, card := range deck.Draw(50) {
		if card == dealt[0] || card == dealt[1] {
			t.Fatalf("card %s dealt twice", card)
		}
	}
	if !deck.Empty() {
		t.Fatal("deck should be empty")
	}
}

func TestCardString(t *testing.T) {
	testCases := []struct {
		str   string
		suit  Suit
		value int32
	}{
		{"Kh", Hearts, 13},
		{"Td", Diamonds, 10},
		{"As", Spades, 14},
		{"2c", Clubs, 2},
	}
	for _, tc := range testCases {
		card := NewCard(tc.str)
		if card.Suit != tc.suit || card.Value != tc.value {
			t.Errorf("NewCard(%s) = %+v", tc.str, card)
		}
		if card.String() != tc.str {
			t.Errorf("NewCard(%s).String() = %s", tc.str, card.String())
		}
	}
}

func TestCardJSON(t *testing.T) {
	card := NewCard("Qs")
	b, err := card.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"Qs"` {
		t.Fatalf("MarshalJSON = %s", string(b))
	}
	var parsed Card
	if err := parsed.UnmarshalJSON(b); err != nil {
		t.Fatal(err)
	}
	if parsed != card {
		t.Fatalf("round trip mismatch: %+v", parsed)
	}
	var bad Card
	if err := bad.UnmarshalJSON([]byte(`"Xx"`)); err == nil {
		t.Fatal("expected error for invalid card")
	}
}
