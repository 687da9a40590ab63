package utils

import (
	"crypto/rand"
	"math/big"
)

// Ambiguous characters (0/O, 1/I) are left out so codes survive being read
// aloud at the gym.
const inviteAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateInviteCode returns a random code for private challenges.
func GenerateInviteCode(length int) string {
	code := make([]byte, length)
	max := big.NewInt(int64(len(inviteAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails if the OS entropy source is broken.
			panic(err)
		}
		code[i] = inviteAlphabet[n.Int64()]
	}
	return string(code)
}
