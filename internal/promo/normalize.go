package promo

import (
	"bytes"
	"encoding/json"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// limitPerUserMax 单用户限用次数上限
const limitPerUserMax = math.MaxInt32

// maxRuleTimestamp 数字时间戳上限（9999-12-31T23:59:59.999Z 的毫秒值）
var maxRuleTimestamp = decimal.NewFromInt(253402300799999)

// scheduleLayouts 可识别的时间格式，无时区的按 UTC 处理
var scheduleLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Normalize 将任意来源的规则数据归一化为 Rules，不会失败也不会 panic。
// 支持 map、JSON 字节或字符串以及已有的 Rules；其他输入返回默认规则。
func Normalize(raw interface{}) Rules {
	switch value := raw.(type) {
	case nil:
		return DefaultRules()
	case Rules:
		return normalizeMap(value.ToMap())
	case *Rules:
		if value == nil {
			return DefaultRules()
		}
		return normalizeMap(value.ToMap())
	case map[string]interface{}:
		return normalizeMap(value)
	case json.RawMessage:
		return NormalizeJSON(value)
	case []byte:
		return NormalizeJSON(value)
	case string:
		return NormalizeJSON([]byte(value))
	}

	if mapped, ok := stringKeyedMap(raw); ok {
		return normalizeMap(mapped)
	}
	return DefaultRules()
}

// NormalizeJSON 解析 JSON 后归一化，解析失败或非对象时返回默认规则
func NormalizeJSON(data []byte) Rules {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return DefaultRules()
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var payload interface{}
	if err := decoder.Decode(&payload); err != nil {
		return DefaultRules()
	}
	mapped, ok := payload.(map[string]interface{})
	if !ok {
		return DefaultRules()
	}
	return normalizeMap(mapped)
}

func normalizeMap(value map[string]interface{}) Rules {
	fields := make(map[string]interface{}, len(value))
	extra := make(map[string]interface{})
	for key, raw := range value {
		if isRuleField(key) {
			fields[key] = raw
			continue
		}
		if canonical, ok := ruleFieldAliases[key]; ok {
			if _, exists := value[canonical]; !exists {
				fields[canonical] = raw
			}
			continue
		}
		extra[key] = raw
	}

	rules := DefaultRules()
	if raw, ok := fields[RuleFieldEnabled]; ok {
		rules.Enabled = parseRuleBool(raw)
	}
	rules.Min = parseRuleDecimal(fields[RuleFieldMin])
	rules.Max = parseRuleDecimal(fields[RuleFieldMax])
	rules.Includes = parseRuleTokens(fields[RuleFieldIncludes])
	rules.Excludes = parseRuleTokens(fields[RuleFieldExcludes])
	rules.MatchMode = parseMatchMode(fields[RuleFieldMatchMode])
	rules.Schedule = parseSchedule(fields[RuleFieldSchedule])
	rules.LimitPerUser = parseLimitPerUser(fields[RuleFieldLimitPerUser])
	rules.PaymentMethods = parsePaymentMethods(fields[RuleFieldPaymentMethods])
	rules.Audience = parseAudience(fields[RuleFieldAudience])
	if len(extra) > 0 {
		rules.Extra = extra
	}
	return rules
}

func isRuleField(key string) bool {
	switch key {
	case RuleFieldEnabled, RuleFieldMin, RuleFieldMax, RuleFieldIncludes, RuleFieldExcludes,
		RuleFieldMatchMode, RuleFieldSchedule, RuleFieldLimitPerUser, RuleFieldPaymentMethods,
		RuleFieldAudience:
		return true
	default:
		return false
	}
}

// stringKeyedMap 兼容 models.JSON 等以字符串为键的具名 map 类型
func stringKeyedMap(raw interface{}) (map[string]interface{}, bool) {
	rv := reflect.ValueOf(raw)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]interface{}, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// parseRuleBool 缺省为 true 的布尔解析，无法识别时视为 false
func parseRuleBool(raw interface{}) bool {
	switch value := raw.(type) {
	case nil:
		return true
	case bool:
		return value
	case string:
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "1", "true", "yes", "on", "t", "y":
			return true
		default:
			return false
		}
	}
	if number := parseRuleDecimal(raw); number != nil {
		return !number.IsZero()
	}
	return false
}

// parseRuleDecimal 解析有限且在 BoundedDecimal 范围内的数值，其他输入返回 nil
func parseRuleDecimal(raw interface{}) *decimal.Decimal {
	var (
		result decimal.Decimal
		err    error
	)
	switch value := raw.(type) {
	case nil:
		return nil
	case decimal.Decimal:
		result = value
	case *decimal.Decimal:
		if value == nil {
			return nil
		}
		result = *value
	case float64:
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return nil
		}
		result = decimal.NewFromFloat(value)
	case float32:
		f := float64(value)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		result = decimal.NewFromFloat32(value)
	case int:
		result = decimal.NewFromInt(int64(value))
	case int32:
		result = decimal.NewFromInt32(value)
	case int64:
		result = decimal.NewFromInt(value)
	case uint:
		result = decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(value)), 0)
	case uint32:
		result = decimal.NewFromInt(int64(value))
	case uint64:
		result = decimal.NewFromBigInt(new(big.Int).SetUint64(value), 0)
	case json.Number:
		result, err = decimal.NewFromString(strings.TrimSpace(value.String()))
	case string:
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			return nil
		}
		result, err = decimal.NewFromString(trimmed)
	default:
		return nil
	}
	if err != nil || !BoundedDecimal(result) {
		return nil
	}
	return &result
}

func parseRuleTokens(raw interface{}) []string {
	var items []interface{}
	switch value := raw.(type) {
	case []interface{}:
		items = value
	case []string:
		items = make([]interface{}, 0, len(value))
		for _, item := range value {
			items = append(items, item)
		}
	default:
		return []string{}
	}

	result := make([]string, 0, len(items))
	for _, item := range items {
		var token string
		switch value := item.(type) {
		case string:
			token = value
		case map[string]interface{}:
			kind, kindOK := value["type"].(string)
			tokenValue, valueOK := tokenValueString(value["value"])
			if !kindOK || !valueOK {
				continue
			}
			token = kind + ":" + tokenValue
		default:
			continue
		}
		parsed, ok := ParseToken(token)
		if !ok {
			continue
		}
		result = append(result, parsed.String())
	}
	return result
}

// tokenValueString 规则构建器中的值可能是字符串或数字 ID
func tokenValueString(raw interface{}) (string, bool) {
	switch value := raw.(type) {
	case string:
		return value, true
	case json.Number:
		return value.String(), true
	case float64:
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return "", false
		}
		return strconv.FormatFloat(value, 'f', -1, 64), true
	case int:
		return strconv.Itoa(value), true
	case int64:
		return strconv.FormatInt(value, 10), true
	default:
		return "", false
	}
}

func parseMatchMode(raw interface{}) MatchMode {
	value, ok := raw.(string)
	if !ok {
		return MatchModeAll
	}
	if MatchMode(strings.ToLower(strings.TrimSpace(value))) == MatchModeAny {
		return MatchModeAny
	}
	return MatchModeAll
}

func parseSchedule(raw interface{}) Schedule {
	value, ok := raw.(map[string]interface{})
	if !ok {
		mapped, mappedOK := stringKeyedMap(raw)
		if !mappedOK {
			return Schedule{}
		}
		value = mapped
	}
	return Schedule{
		From: parseRuleTime(value["from"]),
		To:   parseRuleTime(value["to"]),
	}
}

// parseRuleTime 解析时间并统一为 UTC 秒级精度
func parseRuleTime(raw interface{}) *time.Time {
	var parsed time.Time
	switch value := raw.(type) {
	case nil:
		return nil
	case time.Time:
		if value.IsZero() {
			return nil
		}
		parsed = value
	case *time.Time:
		if value == nil || value.IsZero() {
			return nil
		}
		parsed = *value
	case string:
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			return nil
		}
		t, ok := parseTimeString(trimmed)
		if !ok {
			return nil
		}
		parsed = t
	default:
		number := parseRuleDecimal(raw)
		if number == nil || !number.IsInteger() || number.IsNegative() || number.GreaterThan(maxRuleTimestamp) {
			return nil
		}
		parsed = unixToTime(number.IntPart())
	}
	normalized := parsed.UTC().Truncate(time.Second)
	return &normalized
}

func parseTimeString(value string) (time.Time, bool) {
	for _, layout := range scheduleLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	if seconds, err := strconv.ParseInt(value, 10, 64); err == nil && seconds >= 0 && seconds <= maxRuleTimestamp.IntPart() {
		return unixToTime(seconds), true
	}
	return time.Time{}, false
}

// unixToTime 超过 12 位按毫秒时间戳处理
func unixToTime(value int64) time.Time {
	if value >= 1_000_000_000_000 {
		return time.UnixMilli(value)
	}
	return time.Unix(value, 0)
}

func parseLimitPerUser(raw interface{}) *int {
	number := parseRuleDecimal(raw)
	if number == nil || number.IsNegative() || !number.IsInteger() {
		return nil
	}
	if number.GreaterThan(decimal.NewFromInt(limitPerUserMax)) {
		return nil
	}
	limit := int(number.IntPart())
	return &limit
}

func parsePaymentMethods(raw interface{}) []string {
	var items []string
	switch value := raw.(type) {
	case []interface{}:
		for _, item := range value {
			if text, ok := item.(string); ok {
				items = append(items, text)
			}
		}
	case []string:
		items = value
	case string:
		items = strings.Split(value, ",")
	default:
		return nil
	}

	result := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		method := strings.ToLower(strings.TrimSpace(item))
		if method == "" {
			continue
		}
		if _, ok := seen[method]; ok {
			continue
		}
		seen[method] = struct{}{}
		result = append(result, method)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func parseAudience(raw interface{}) Audience {
	switch value := raw.(type) {
	case string:
		return Audience{Target: strings.TrimSpace(value)}
	case map[string]interface{}:
		if target, ok := value["target"].(string); ok {
			return Audience{Target: strings.TrimSpace(target)}
		}
	}
	return Audience{Target: AudienceAll}
}
