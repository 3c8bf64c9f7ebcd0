package services

import "crypto/rand"

// alphanumerics is the alphabet used for minted tokens and entity ids.
const alphanumerics = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// randomAlphanumeric returns n random characters drawn from the
// alphanumeric alphabet using crypto/rand. The slight modulo bias is
// irrelevant for opaque identifiers.
func randomAlphanumeric(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = alphanumerics[int(b)%len(alphanumerics)]
	}
	return string(buf), nil
}
