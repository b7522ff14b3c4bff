package i18n

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestNormalizeLocale(t *testing.T) {
	cases := []struct {
		raw  string
		want string
		ok   bool
	}{
		{raw: "zh-CN", want: LocaleZH, ok: true},
		{raw: "en", want: LocaleEN, ok: true},
		{raw: "zh-TW", want: LocaleTW, ok: true},
		{raw: "zh-Hant", want: LocaleTW, ok: true},
		{raw: "", ok: false},
		{raw: "not a tag!", ok: false},
	}
	for _, tc := range cases {
		got, ok := NormalizeLocale(tc.raw)
		if ok != tc.ok {
			t.Fatalf("NormalizeLocale(%q) ok want %v got %v", tc.raw, tc.ok, ok)
		}
		if ok && got != tc.want {
			t.Fatalf("NormalizeLocale(%q) want %s got %s", tc.raw, tc.want, got)
		}
	}
}

func TestResolveLocale(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		url    string
		header map[string]string
		want   string
	}{
		{name: "default", url: "/", want: LocaleZH},
		{name: "query", url: "/?lang=en-US", header: map[string]string{"Accept-Language": "zh-TW"}, want: LocaleEN},
		{name: "x-locale", url: "/", header: map[string]string{"X-Locale": "zh-TW"}, want: LocaleTW},
		{name: "accept-language", url: "/", header: map[string]string{"Accept-Language": "en-US,en;q=0.9,zh;q=0.5"}, want: LocaleEN},
		{name: "invalid query falls through", url: "/?lang=xx!", header: map[string]string{"Accept-Language": "en"}, want: LocaleEN},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, tc.url, nil)
			for key, value := range tc.header {
				c.Request.Header.Set(key, value)
			}
			if got := ResolveLocale(c); got != tc.want {
				t.Fatalf("locale want %s got %s", tc.want, got)
			}
		})
	}
}

func TestTranslate(t *testing.T) {
	if got := T(LocaleEN, "error.coupon_not_found"); got != "Coupon not found" {
		t.Fatalf("unexpected english message: %s", got)
	}
	if got := T("fr-FR", "error.coupon_not_found"); got != "优惠券不存在" {
		t.Fatalf("unknown locale should fall back to default, got %s", got)
	}
	if got := T(LocaleEN, "error.missing_key"); got != "error.missing_key" {
		t.Fatalf("missing key should return itself, got %s", got)
	}
	if got := Sprintf(LocaleEN, "error.rate_limited", 30); got != "Too many requests, retry in 30 seconds" {
		t.Fatalf("unexpected formatted message: %s", got)
	}
	if got := Reason(LocaleEN, "below_minimum"); got != "Cart total is below the minimum spend" {
		t.Fatalf("unexpected reason message: %s", got)
	}
}

func TestCatalogKeysConsistent(t *testing.T) {
	base := catalog[LocaleZH]
	for locale, messages := range catalog {
		if len(messages) != len(base) {
			t.Fatalf("locale %s has %d messages, want %d", locale, len(messages), len(base))
		}
		for key := range base {
			if _, ok := messages[key]; !ok {
				t.Fatalf("locale %s missing key %s", locale, key)
			}
		}
	}
}

func TestSetDefaultLocale(t *testing.T) {
	t.Cleanup(func() { SetDefaultLocale(LocaleZH) })
	SetDefaultLocale("en")
	if DefaultLocale() != LocaleEN {
		t.Fatalf("default locale want %s got %s", LocaleEN, DefaultLocale())
	}
	SetDefaultLocale("???")
	if DefaultLocale() != LocaleEN {
		t.Fatalf("invalid locale should be ignored")
	}
}
