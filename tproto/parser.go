package tproto

type parserState uint8

const (
	stateSync parserState = iota
	stateCommand
	stateSize
	statePayload
	stateChecksum
)

// Parser reconstructs frames from the 16-bit words latched off the bus.
//
// Wire order: sync word, command id, payload size in bytes, the payload
// words (little-endian bytes within each word, zero-padded to a word
// boundary), then a 16-bit additive checksum of everything after the sync
// word. Words that arrive outside a frame are bus noise and are ignored.
//
// Feed runs in interrupt context: it never allocates and completes in
// bounded time. Exactly one of the two callbacks fires per completed
// boundary, with a frame that is only valid for the duration of the call.
type Parser struct {
	state     parserState
	frame     Frame
	claimed   uint16
	wordsLeft int
	wordIndex int
	sum       uint16

	onFrame         func(*Frame)
	onChecksumError func(*Frame)
}

func NewParser(onFrame, onChecksumError func(*Frame)) *Parser {
	return &Parser{
		onFrame:         onFrame,
		onChecksumError: onChecksumError,
	}
}

func (p *Parser) Feed(word uint16) {
	switch p.state {
	case stateSync:
		if word == syncWord {
			p.state = stateCommand
		}

	case stateCommand:
		p.frame.CommandID = word
		p.sum = word
		p.state = stateSize

	case stateSize:
		p.claimed = word
		p.sum += word
		size := word
		if size > MaxPayloadSize {
			size = MaxPayloadSize
		}
		p.frame.PayloadSize = size
		p.wordsLeft = (int(p.claimed) + 1) / 2
		p.wordIndex = 0
		if p.wordsLeft == 0 {
			p.state = stateChecksum
		} else {
			p.state = statePayload
		}

	case statePayload:
		p.sum += word
		off := p.wordIndex * 2
		if off+1 < MaxPayloadSize {
			p.frame.Payload[off] = byte(word)
			p.frame.Payload[off+1] = byte(word >> 8)
		}
		p.wordIndex++
		p.wordsLeft--
		if p.wordsLeft == 0 {
			p.state = stateChecksum
		}

	case stateChecksum:
		p.frame.Checksum = word
		if word == p.sum {
			if p.onFrame != nil {
				p.onFrame(&p.frame)
			}
		} else if p.onChecksumError != nil {
			p.onChecksumError(&p.frame)
		}
		p.state = stateSync
	}
}

// AppendFrameWords appends the wire encoding of one frame. Simulators and
// tests use it to stand in for the host computer's ROM accesses.
func AppendFrameWords(dst []uint16, commandID uint16, payload []byte) []uint16 {
	size := uint16(len(payload))
	dst = append(dst, syncWord, commandID, size)
	sum := commandID + size
	for i := 0; i < len(payload); i += 2 {
		w := uint16(payload[i])
		if i+1 < len(payload) {
			w |= uint16(payload[i+1]) << 8
		}
		dst = append(dst, w)
		sum += w
	}
	return append(dst, sum)
}

// AppendToken appends a 32-bit correlation token in payload byte order.
func AppendToken(dst []byte, token uint32) []byte {
	return appendPayload32(dst, token)
}

// AppendParam32 appends a 32-bit parameter in payload byte order.
func AppendParam32(dst []byte, v uint32) []byte {
	return appendPayload32(dst, v)
}

func appendPayload32(dst []byte, v uint32) []byte {
	return append(dst,
		byte(v>>16), byte(v>>24),
		byte(v), byte(v>>8))
}
