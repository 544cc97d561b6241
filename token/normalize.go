package token

import (
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Normalize prepares raw input bytes for lexing: a leading byte order
// mark is stripped and the "\r\n" and bare "\r" line-end forms become
// "\n" (XML 1.0 section 2.11). Lex and LexDTD apply it themselves;
// externally resolved replacement text must go through it before being
// handed to Relex.
func Normalize(src []byte) []byte {
	t := transform.Chain(
		unicode.BOMOverride(unicode.UTF8.NewDecoder()),
		&eolNormalizer{},
	)
	out, _, err := transform.Bytes(t, src)
	if err != nil {
		return src
	}
	return out
}

// eolNormalizer rewrites \r\n and \r to \n.
type eolNormalizer struct{}

func (n *eolNormalizer) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		c := src[nSrc]
		if c == '\r' {
			if nSrc+1 >= len(src) && !atEOF {
				// need to see whether a \n follows
				err = transform.ErrShortSrc
				return
			}
			if nDst >= len(dst) {
				err = transform.ErrShortDst
				return
			}
			dst[nDst] = '\n'
			nDst++
			nSrc++
			if nSrc < len(src) && src[nSrc] == '\n' {
				nSrc++
			}
			continue
		}
		if nDst >= len(dst) {
			err = transform.ErrShortDst
			return
		}
		dst[nDst] = c
		nDst++
		nSrc++
	}
	return
}

func (n *eolNormalizer) Reset() {}
