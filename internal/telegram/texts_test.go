package telegram

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/oldtora/ppshiftsbot/internal/domain"
)

func TestPushLabel(t *testing.T) {
	short := domain.User{TelegramID: 7, Person: "Ann"}
	assert.Equal(t, "Ann (7)", pushLabel(short, 60))

	unbound := domain.User{TelegramID: 7}
	assert.Equal(t, "— (7)", pushLabel(unbound, 60))

	// Cyrillic names must be cut on rune boundaries, never mid-character.
	long := domain.User{TelegramID: 123456789, Person: "Євгеній Олександрович Довгопрізвиськов"}
	got := pushLabel(long, 20)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 20, utf8.RuneCountInString(got))
}
