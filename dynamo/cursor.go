package dynamo

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// A page cursor is the key of the last profile handed out, as dynamo JSON in
// URL-safe base64 so it can be pasted back into a -cursor flag.

var errEmptyPageKey = errors.New("cursor holds no page key")

func encodeCursor(pageKey map[string]types.AttributeValue) (string, error) {
	raw, err := attributevalue.MarshalMapJSON(pageKey)
	if err != nil {
		return "", fmt.Errorf("failed to encode page key: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func decodeCursor(cursor string) (map[string]types.AttributeValue, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, fmt.Errorf("cursor is not base64: %w", err)
	}

	pageKey, err := attributevalue.UnmarshalMapJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("cursor is not a page key: %w", err)
	}
	if _, ok := pageKey["PK"]; !ok {
		return nil, errEmptyPageKey
	}

	return pageKey, nil
}

// pageKeyOf picks the attributes named by keyShape out of item, which lets
// a page end on an item other than the one dynamo stopped at.
func pageKeyOf(keyShape, item map[string]types.AttributeValue) map[string]types.AttributeValue {
	pageKey := make(map[string]types.AttributeValue, len(keyShape))
	for name := range keyShape {
		if v, ok := item[name]; ok {
			pageKey[name] = v
		}
	}
	return pageKey
}
