package utils_test

import (
	"testing"

	"birthday-backend/utils"

	"github.com/stretchr/testify/assert"
)

func TestValidatePhone(t *testing.T) {
	valid := []string{
		"+919876543210",
		"919876543210",
		"whatsapp:+919876543210",
		"+1 415 523 8886",
		"+1-415-523-8886",
		"(91) 9876543210",
	}
	for _, number := range valid {
		assert.True(t, utils.ValidatePhone(number), "expected %q to be valid", number)
	}

	invalid := []string{
		"",
		"12345",
		"+0123456789",
		"not-a-number",
		"+91987654321098765",
	}
	for _, number := range invalid {
		assert.False(t, utils.ValidatePhone(number), "expected %q to be invalid", number)
	}
}
