package xmlrpc

// DefaultMaxDepth is the nesting depth limit of a new Registry.
const DefaultMaxDepth = 64

// Dispatcher encodes a value with whichever encoder accepts it.
// Encoders of container values use it for their members.
type Dispatcher interface {
	Dispatch(v any) (*Element, error)
}

// ValueEncoder encodes values of the kinds it accepts into elements.
type ValueEncoder interface {
	CanEncode(v any) bool
	Encode(d Dispatcher, v any) (*Element, error)
}

// Registry is an ordered list of encoders. The first encoder that accepts a value encodes it.
// The zero value has no encoders and uses DefaultMaxDepth.
type Registry struct {
	// MaxDepth limits nesting of container values. Zero or less means DefaultMaxDepth.
	MaxDepth int

	encoders []ValueEncoder
}

// NewRegistry returns a registry consulting encoders in the given order.
func NewRegistry(encoders ...ValueEncoder) *Registry {
	return &Registry{
		MaxDepth: DefaultMaxDepth,
		encoders: encoders,
	}
}

// DefaultRegistry returns a registry with all built-in encoders.
// It accepts nil, strings, booleans, integer kinds up to math.MaxInt64, float32 and float64,
// []byte, time.Time, maps with string keys and slices or arrays of any other element type.
func DefaultRegistry() *Registry {
	return NewRegistry(
		NilEncoder{},
		StringEncoder{},
		BoolEncoder{},
		IntEncoder{},
		DoubleEncoder{},
		Base64Encoder{},
		TimeEncoder{},
		StructEncoder{},
		ArrayEncoder{},
	)
}

// Register appends enc to the encoder list.
// It is consulted after the encoders already registered.
func (r *Registry) Register(enc ValueEncoder) {
	r.encoders = append(r.encoders, enc)
}

// Encode encodes v into an element tree.
// Any failure, at any nesting level, is returned as a single *EncodingError and no element is returned.
func (r *Registry) Encode(v any) (*Element, error) {
	s := &encodeState{registry: r}
	e, err := s.Dispatch(v)
	if err != nil {
		return nil, &EncodingError{Err: err}
	}
	return e, nil
}

type encodeState struct {
	registry *Registry
	depth    int
}

func (r *Registry) maxDepth() int {
	if r.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return r.MaxDepth
}

func (s *encodeState) Dispatch(v any) (*Element, error) {
	if s.depth >= s.registry.maxDepth() {
		return nil, ErrMaxDepth
	}
	for _, enc := range s.registry.encoders {
		if !enc.CanEncode(v) {
			continue
		}
		s.depth++
		e, err := enc.Encode(s, v)
		s.depth--
		return e, err
	}
	return nil, &UnsupportedTypeError{Value: v}
}
