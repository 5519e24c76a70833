package view

// Transform is the plugin hook at stage 2 (spec 4.F): given the token
// stream from stage 1 (or a prior transform), return a replacement stream.
// A transform that does not touch a token must pass it through unchanged,
// and any token it derives from a real-buffer token must carry that
// token's Offset forward (see Token.IsReal), so later stages can still map
// screen positions back to buffer bytes.
type Transform func(tokens []Token) []Token

// ApplyTransforms runs tokens through every transform in order.
func ApplyTransforms(tokens []Token, transforms []Transform) []Token {
	for _, t := range transforms {
		if t == nil {
			continue
		}
		tokens = t(tokens)
	}
	return tokens
}
