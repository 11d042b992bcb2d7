package story

import (
	"encoding/json"
	"strings"
)

// DefaultRoster 在请求未携带角色时使用。
func DefaultRoster() CharacterList {
	return CharacterList{"Protagonist", "Antagonist"}
}

// CharacterList 是有序的角色名单，第一个元素约定为主角。
// 前端历史上既会传 JSON 数组也会传逗号分隔的字符串，
// 这里在反序列化边界统一归一化。
type CharacterList []string

// UnmarshalJSON 同时接受 ["A","B"] 与 "A, B" 两种形式。
func (c *CharacterList) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err == nil {
		*c = Normalize(names)
		return nil
	}

	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return err
	}
	*c = Normalize(strings.Split(joined, ","))
	return nil
}

// Normalize 去掉空白项并保证名单非空。
func Normalize(names []string) CharacterList {
	cleaned := make(CharacterList, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name != "" {
			cleaned = append(cleaned, name)
		}
	}
	if len(cleaned) == 0 {
		return DefaultRoster()
	}
	return cleaned
}

// Protagonist 返回名单中的第一个角色。
func (c CharacterList) Protagonist() string {
	if len(c) == 0 {
		return DefaultRoster()[0]
	}
	return c[0]
}
