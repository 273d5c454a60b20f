package termengine

// replacementChar is substituted for any malformed or incomplete UTF-8
// sequence, per the Unicode recommendation for byte-oriented decoders.
const replacementChar = '�'

// utf8Decoder is a streaming, byte-at-a-time UTF-8 decoder suitable for
// feeding from a PTY one chunk at a time. It never blocks and never panics
// on malformed input; invalid sequences decode to replacementChar.
type utf8Decoder struct {
	buf      [4]byte
	len      uint8
	expected uint8
}

// feed consumes one byte and returns a decoded rune plus true once a full
// codepoint (or a replacement for an invalid one) is available. It returns
// (0, false) while still waiting on continuation bytes.
func (d *utf8Decoder) feed(b byte) (rune, bool) {
	if d.expected == 0 {
		switch {
		case b < 0x80:
			return rune(b), true
		case b&0xE0 == 0xC0:
			d.expected = 2
		case b&0xF0 == 0xE0:
			d.expected = 3
		case b&0xF8 == 0xF0:
			d.expected = 4
		default:
			// Invalid lead byte (stray continuation byte or 0xF8-0xFF).
			return replacementChar, true
		}
		d.buf[0] = b
		d.len = 1
		return 0, false
	}

	if b&0xC0 == 0x80 {
		d.buf[d.len] = b
		d.len++
		if d.len == d.expected {
			r := decodeUTF8(d.buf[:d.len])
			d.len, d.expected = 0, 0
			return r, true
		}
		return 0, false
	}

	// Expected a continuation byte but got something else: the in-progress
	// sequence is invalid. Reset and, if the offending byte could itself
	// start a new sequence, feed it back in so the next call to feed
	// observes the resumed state; the replacement is still what this call
	// returns for the broken sequence.
	d.len, d.expected = 0, 0
	if b >= 0x80 {
		d.feed(b)
	}
	return replacementChar, true
}

// isPending reports whether the decoder is mid-sequence, waiting on more
// continuation bytes.
func (d *utf8Decoder) isPending() bool {
	return d.expected > 0
}

// flush abandons a pending sequence, returning replacementChar and resetting
// decoder state. Used when a byte that cannot continue the sequence arrives.
func (d *utf8Decoder) flush() rune {
	d.len, d.expected = 0, 0
	return replacementChar
}

// decodeUTF8 decodes a complete, already-length-matched multi-byte sequence.
// Falls back to replacementChar on overlong encodings or out-of-range values
// that the simple length/continuation check above doesn't catch.
func decodeUTF8(b []byte) rune {
	var r rune
	switch len(b) {
	case 2:
		r = rune(b[0]&0x1F)<<6 | rune(b[1]&0x3F)
		if r < 0x80 {
			return replacementChar
		}
	case 3:
		r = rune(b[0]&0x0F)<<12 | rune(b[1]&0x3F)<<6 | rune(b[2]&0x3F)
		if r < 0x800 || (r >= 0xD800 && r <= 0xDFFF) {
			return replacementChar
		}
	case 4:
		r = rune(b[0]&0x07)<<18 | rune(b[1]&0x3F)<<12 | rune(b[2]&0x3F)<<6 | rune(b[3]&0x3F)
		if r < 0x10000 || r > 0x10FFFF {
			return replacementChar
		}
	default:
		return replacementChar
	}
	return r
}
