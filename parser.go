package termengine

// parserState is a state of the DEC ANSI / VT500-series parser state machine
// (the well-known Paul Williams state table), covering the subset of states
// this parser distinguishes.
type parserState int

const (
	stateGround parserState = iota
	stateEscape
	stateEscapeIntermediate
	stateCsiEntry
	stateCsiParam
	stateCsiIntermediate
	stateCsiIgnore
	stateOscString
	stateDcsEntry
	stateDcsParam
	stateDcsIntermediate
	stateDcsPassthrough
	stateDcsIgnore
	stateSosPmApcString
	stateOscEscape
)

// ActionKind identifies the variant of Action produced by the parser.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionPrint
	ActionExecute
	ActionCsiDispatch
	ActionEscDispatch
	ActionOscDispatch
)

// Action is the parser's sole output type: one decoded unit of terminal
// behavior per byte fed in. Handlers switch on Kind and read only the fields
// relevant to that kind.
type Action struct {
	Kind ActionKind

	// Print: the printable character (Ground state, 0x20-0x7E, or routed
	// through the UTF-8 decoder by the caller for bytes >= 0x80).
	Char rune

	// Execute: the raw C0 control byte.
	Byte byte

	// CsiDispatch / EscDispatch: the final byte that terminated the sequence.
	Final byte
	// CsiDispatch / EscDispatch: intermediate bytes (0x20-0x2F), in order.
	// For CSI, private-marker bytes (0x3C-0x3F, e.g. '?') are also recorded
	// here.
	Intermediates []byte
	// CsiDispatch: accumulated numeric parameters. A CSI with no digits and
	// no semicolons at all yields a nil/empty slice, not []uint16{0}; a CSI
	// ending in an explicit empty field (e.g. "CSI ; H") yields 0 for that
	// field.
	Params []uint16

	// OscDispatch: the raw bytes between "ESC ]" and the terminator (BEL or
	// ST), terminator excluded.
	OscData []byte
}

// Parser implements the VT500-series escape sequence state machine. It is
// driven one byte at a time via Advance and emits a single Action per call.
// A Parser is not safe for concurrent use.
type Parser struct {
	state parserState

	intermediates []byte
	params        []uint16
	curParam      uint16
	paramStarted  bool
	oscData       []byte
}

// NewParser returns a Parser in the Ground state.
func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) clear() {
	p.intermediates = p.intermediates[:0]
	p.params = p.params[:0]
	p.curParam = 0
	p.paramStarted = false
}

// Advance feeds one byte into the state machine and returns the resulting
// Action. Most bytes that merely accumulate parser state (digits inside a
// CSI, intermediates, OSC body bytes) return ActionNone.
func (p *Parser) Advance(b byte) Action {
	// "Anywhere" transitions take priority over per-state handling.
	switch b {
	case 0x18, 0x1A: // CAN, SUB: abort whatever sequence is in progress
		p.state = stateGround
		return Action{Kind: ActionExecute, Byte: b}
	case 0x1B: // ESC: start a fresh escape sequence
		if p.state == stateOscString {
			// OSC may terminate with the two-byte ST form (ESC \) instead of
			// BEL; give the next byte a chance to complete it before treating
			// this ESC as the start of an unrelated sequence.
			p.state = stateOscEscape
			return Action{Kind: ActionNone}
		}
		p.clear()
		p.state = stateEscape
		return Action{Kind: ActionNone}
	}

	switch p.state {
	case stateGround:
		return p.ground(b)
	case stateEscape:
		return p.escape(b)
	case stateEscapeIntermediate:
		return p.escapeIntermediate(b)
	case stateCsiEntry:
		return p.csiEntry(b)
	case stateCsiParam:
		return p.csiParam(b)
	case stateCsiIntermediate:
		return p.csiIntermediate(b)
	case stateCsiIgnore:
		return p.csiIgnore(b)
	case stateOscString:
		return p.oscString(b)
	case stateDcsEntry:
		return p.dcsEntry(b)
	case stateDcsParam:
		return p.dcsParam(b)
	case stateDcsIntermediate:
		return p.dcsIntermediate(b)
	case stateDcsPassthrough:
		return p.dcsPassthrough(b)
	case stateDcsIgnore:
		return p.dcsIgnore(b)
	case stateSosPmApcString:
		return p.sosPmApcString(b)
	case stateOscEscape:
		return p.oscEscape(b)
	}
	return Action{Kind: ActionNone}
}

func (p *Parser) ground(b byte) Action {
	switch {
	case b <= 0x1F:
		return Action{Kind: ActionExecute, Byte: b}
	case b >= 0x20 && b <= 0x7E:
		return Action{Kind: ActionPrint, Char: rune(b)}
	case b == 0x7F:
		return Action{Kind: ActionNone} // DEL: discarded
	default:
		// 0x80-0xFF: emitted as a Print of replacementChar. Terminal.feedByte
		// recognizes this case and routes the raw byte through its UTF-8
		// decoder instead of printing the replacement.
		return Action{Kind: ActionPrint, Char: replacementChar}
	}
}

func (p *Parser) escape(b byte) Action {
	switch {
	case b >= 0x20 && b <= 0x2F:
		p.intermediates = append(p.intermediates, b)
		p.state = stateEscapeIntermediate
		return Action{Kind: ActionNone}
	case b == '[':
		p.clear()
		p.state = stateCsiEntry
		return Action{Kind: ActionNone}
	case b == ']':
		p.oscData = p.oscData[:0]
		p.state = stateOscString
		return Action{Kind: ActionNone}
	case b == 'P':
		p.clear()
		p.state = stateDcsEntry
		return Action{Kind: ActionNone}
	case b == 'X' || b == '^' || b == '_':
		p.state = stateSosPmApcString
		return Action{Kind: ActionNone}
	case b >= 0x30 && b <= 0x7E:
		p.state = stateGround
		act := Action{Kind: ActionEscDispatch, Final: b, Intermediates: cloneBytes(p.intermediates)}
		return act
	default:
		return Action{Kind: ActionNone}
	}
}

func (p *Parser) escapeIntermediate(b byte) Action {
	switch {
	case b >= 0x20 && b <= 0x2F:
		p.intermediates = append(p.intermediates, b)
		return Action{Kind: ActionNone}
	case b >= 0x30 && b <= 0x7E:
		p.state = stateGround
		return Action{Kind: ActionEscDispatch, Final: b, Intermediates: cloneBytes(p.intermediates)}
	default:
		return Action{Kind: ActionNone}
	}
}

func (p *Parser) csiEntry(b byte) Action {
	switch {
	case b >= '0' && b <= '9':
		p.curParam = uint16(b - '0')
		p.paramStarted = true
		p.state = stateCsiParam
		return Action{Kind: ActionNone}
	case b == ';':
		p.params = append(p.params, 0)
		p.paramStarted = false
		p.state = stateCsiParam
		return Action{Kind: ActionNone}
	case b >= 0x3C && b <= 0x3F: // private markers: ? < = >
		p.intermediates = append(p.intermediates, b)
		p.state = stateCsiParam
		return Action{Kind: ActionNone}
	case b >= 0x20 && b <= 0x2F:
		p.intermediates = append(p.intermediates, b)
		p.state = stateCsiIntermediate
		return Action{Kind: ActionNone}
	case b >= 0x40 && b <= 0x7E:
		return p.dispatchCsi(b)
	default:
		return Action{Kind: ActionNone}
	}
}

func (p *Parser) csiParam(b byte) Action {
	switch {
	case b >= '0' && b <= '9':
		digit := uint16(b - '0')
		p.curParam = saturatingMulAdd(p.curParam, 10, digit)
		p.paramStarted = true
		return Action{Kind: ActionNone}
	case b == ';':
		p.params = append(p.params, p.curParam)
		p.curParam = 0
		p.paramStarted = false
		return Action{Kind: ActionNone}
	case b >= 0x20 && b <= 0x2F:
		p.flushParam()
		p.intermediates = append(p.intermediates, b)
		p.state = stateCsiIntermediate
		return Action{Kind: ActionNone}
	case b >= 0x40 && b <= 0x7E:
		p.flushParam()
		return p.dispatchCsi(b)
	default:
		p.state = stateCsiIgnore
		return Action{Kind: ActionNone}
	}
}

// flushParam commits the in-progress numeric field to params, but only if
// a CSI actually had at least one field so far (avoids turning "no params at
// all" into a spurious params=[0]).
func (p *Parser) flushParam() {
	if p.paramStarted || len(p.params) > 0 {
		p.params = append(p.params, p.curParam)
	}
	p.curParam = 0
	p.paramStarted = false
}

func (p *Parser) dispatchCsi(final byte) Action {
	p.state = stateGround
	return Action{
		Kind:          ActionCsiDispatch,
		Final:         final,
		Intermediates: cloneBytes(p.intermediates),
		Params:        cloneParams(p.params),
	}
}

func (p *Parser) csiIntermediate(b byte) Action {
	switch {
	case b >= 0x20 && b <= 0x2F:
		p.intermediates = append(p.intermediates, b)
		return Action{Kind: ActionNone}
	case b >= 0x40 && b <= 0x7E:
		return p.dispatchCsi(b)
	default:
		p.state = stateCsiIgnore
		return Action{Kind: ActionNone}
	}
}

func (p *Parser) csiIgnore(b byte) Action {
	if b >= 0x40 && b <= 0x7E {
		p.state = stateGround
	}
	return Action{Kind: ActionNone}
}

func (p *Parser) oscString(b byte) Action {
	switch b {
	case 0x07, 0x9C: // BEL or ST terminates
		p.state = stateGround
		return Action{Kind: ActionOscDispatch, OscData: cloneBytes(p.oscData)}
	default:
		p.oscData = append(p.oscData, b)
		return Action{Kind: ActionNone}
	}
}

// oscEscape follows an ESC seen while in stateOscString: a following '\\'
// completes the two-byte ST terminator and dispatches the accumulated OSC
// payload; anything else means the ESC was the start of a new sequence that
// abandoned the OSC string, so the payload is dropped and the byte is
// replayed as a fresh escape.
func (p *Parser) oscEscape(b byte) Action {
	if b == '\\' {
		p.state = stateGround
		return Action{Kind: ActionOscDispatch, OscData: cloneBytes(p.oscData)}
	}
	p.clear()
	p.state = stateEscape
	return p.escape(b)
}

func (p *Parser) dcsEntry(b byte) Action {
	switch {
	case b >= '0' && b <= '9':
		p.curParam = uint16(b - '0')
		p.paramStarted = true
		p.state = stateDcsParam
		return Action{Kind: ActionNone}
	case b == ';':
		p.params = append(p.params, 0)
		p.state = stateDcsParam
		return Action{Kind: ActionNone}
	case b >= 0x20 && b <= 0x2F:
		p.intermediates = append(p.intermediates, b)
		p.state = stateDcsIntermediate
		return Action{Kind: ActionNone}
	case b >= 0x40 && b <= 0x7E:
		p.state = stateDcsPassthrough
		return Action{Kind: ActionNone}
	default:
		return Action{Kind: ActionNone}
	}
}

func (p *Parser) dcsParam(b byte) Action {
	switch {
	case b >= '0' && b <= '9':
		digit := uint16(b - '0')
		p.curParam = saturatingMulAdd(p.curParam, 10, digit)
		return Action{Kind: ActionNone}
	case b == ';':
		p.params = append(p.params, p.curParam)
		p.curParam = 0
		return Action{Kind: ActionNone}
	case b >= 0x20 && b <= 0x2F:
		p.intermediates = append(p.intermediates, b)
		p.state = stateDcsIntermediate
		return Action{Kind: ActionNone}
	case b >= 0x40 && b <= 0x7E:
		p.state = stateDcsPassthrough
		return Action{Kind: ActionNone}
	default:
		p.state = stateDcsIgnore
		return Action{Kind: ActionNone}
	}
}

func (p *Parser) dcsIntermediate(b byte) Action {
	switch {
	case b >= 0x20 && b <= 0x2F:
		p.intermediates = append(p.intermediates, b)
		return Action{Kind: ActionNone}
	case b >= 0x40 && b <= 0x7E:
		p.state = stateDcsPassthrough
		return Action{Kind: ActionNone}
	default:
		p.state = stateDcsIgnore
		return Action{Kind: ActionNone}
	}
}

// dcsPassthrough recognizes and discards DCS payload bytes: this parser
// tracks DCS only well enough to consume it without corrupting later state,
// it does not hand payload bytes to the handler.
func (p *Parser) dcsPassthrough(b byte) Action {
	if b == 0x9C {
		p.state = stateGround
	}
	return Action{Kind: ActionNone}
}

func (p *Parser) dcsIgnore(b byte) Action {
	if b == 0x9C {
		p.state = stateGround
	}
	return Action{Kind: ActionNone}
}

// sosPmApcString recognizes and discards SOS/PM/APC payloads (ESC X/^/_)
// up to their ST terminator.
func (p *Parser) sosPmApcString(b byte) Action {
	if b == 0x9C {
		p.state = stateGround
	}
	return Action{Kind: ActionNone}
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func cloneParams(p []uint16) []uint16 {
	if len(p) == 0 {
		return nil
	}
	out := make([]uint16, len(p))
	copy(out, p)
	return out
}

// saturatingMulAdd computes cur*mul+add without overflowing uint16; it clamps
// to the maximum value instead of wrapping, so pathological input like
// "CSI 999999999 A" cannot panic or wrap into a small, wrong parameter.
func saturatingMulAdd(cur, mul, add uint16) uint16 {
	product := uint32(cur) * uint32(mul)
	sum := product + uint32(add)
	if sum > 0xFFFF {
		return 0xFFFF
	}
	return uint16(sum)
}
