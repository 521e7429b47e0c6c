package textseg

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Truncate shortens sentence to at most maxTokens tokens under the given
// tiktoken encoding. It returns the sentence unchanged when it fits or when
// maxTokens <= 0. An encoding that cannot be loaded is reported as an error
// rather than silently passing the text through, since an overlong input
// would be rejected by the embedding backend anyway.
func Truncate(sentence string, encoding string, maxTokens int) (string, error) {
	if maxTokens <= 0 || sentence == "" {
		return sentence, nil
	}

	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return "", err
	}

	tokens := enc.Encode(sentence, nil, nil)
	if len(tokens) <= maxTokens {
		return sentence, nil
	}

	return strings.TrimSpace(enc.Decode(tokens[:maxTokens])), nil
}
