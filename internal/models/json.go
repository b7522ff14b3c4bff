package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON 以 JSON 文本存储的对象字段
type JSON map[string]interface{}

// Value 实现 driver.Valuer 接口，以文本写入便于 SQL 侧按路径提取
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	data, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan 实现 sql.Scanner 接口，数字保留为 json.Number 以免丢失金额精度
func (j *JSON) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*j = make(JSON)
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported json column type %T", value)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		*j = make(JSON)
		return nil
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	out := make(JSON)
	if err := decoder.Decode(&out); err != nil {
		return err
	}
	*j = out
	return nil
}
