package services

import (
	"strings"

	"github.com/dmitrijs2005/magiclink/internal/common"
)

// publicKeyGroups are the inclusive byte-length ranges of the three random
// groups that make up a public key.
var publicKeyGroups = [3][2]int{{3, 7}, {4, 7}, {5, 7}}

// GeneratePublicKey returns three hex-encoded random groups joined by "-",
// e.g. "a1b2c3-d4e5f6a7-0a1b2c3d4e". Every byte comes from crypto/rand.
func GeneratePublicKey() (string, error) {
	parts := make([]string, 0, len(publicKeyGroups))
	for _, g := range publicKeyGroups {
		size, err := common.RandIntRange(g[0], g[1])
		if err != nil {
			return "", err
		}
		part, err := common.MakeRandHexString(size)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "-"), nil
}

// ComposeURL builds the shareable magic URL.
func ComposeURL(homeURL, endpoint, publicKey string) string {
	return strings.TrimRight(homeURL, "/") + "/" + endpoint + "/" + publicKey
}
