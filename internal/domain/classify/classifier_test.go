package classify

import "testing"

func TestClassifyAuthURLs(t *testing.T) {
	c := New()

	tests := []struct {
		name    string
		url     string
		keyword string
		param   string
	}{
		{
			name:    "oauth authorize with code",
			url:     "https://accounts.example.com/oauth/authorize?client_id=x&code=abc123",
			keyword: "auth", // matched inside "oauth"; scan order is fixed
			param:   "code",
		},
		{
			name:    "login with token",
			url:     "https://example.com/login?token=xyz",
			keyword: "login",
			param:   "token",
		},
		{
			name:    "callback with access_token in fragment",
			url:     "https://example.com/callback#access_token=abc&state=s",
			keyword: "callback",
			param:   "access_token",
		},
		{
			name:    "spa route fragment",
			url:     "https://app.example.com/sso#/finish?token=t",
			keyword: "sso",
			param:   "token",
		},
		{
			name:    "mixed case",
			url:     "https://example.com/OAuth/Finish?Code=X",
			keyword: "auth",
			param:   "code",
		},
		{
			name:    "keyword inside longer word",
			url:     "https://example.com/authenticate?access_token=zz",
			keyword: "auth",
			param:   "access_token",
		},
		{
			name:    "keyword in host",
			url:     "https://signin.example.com/done?code=1",
			keyword: "signin",
			param:   "code",
		},
		{
			name:    "empty param value still counts",
			url:     "https://example.com/login?token=",
			keyword: "login",
			param:   "token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := c.Classify(tt.url)
			if !v.AuthRelated {
				t.Fatalf("Classify(%q) should be auth-related", tt.url)
			}
			if v.Keyword != tt.keyword {
				t.Errorf("keyword = %q, want %q", v.Keyword, tt.keyword)
			}
			if v.Param != tt.param {
				t.Errorf("param = %q, want %q", v.Param, tt.param)
			}
		})
	}
}

func TestClassifyNonAuthURLs(t *testing.T) {
	c := New()

	tests := []struct {
		name string
		url  string
	}{
		{"keyword without param", "https://example.com/login"},
		{"keyword with unrelated params", "https://example.com/signin?utm_source=mail"},
		{"param without keyword", "https://example.com/article?code=promo"},
		{"token param without keyword", "https://shop.example.com/cart?token=basket"},
		{"plain page", "https://example.com/pricing"},
		{"empty string", ""},
		{"whitespace only", "   "},
		{"param name as substring only", "https://example.com/login?protoken=1&codex=2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if v := c.Classify(tt.url); v.AuthRelated {
				t.Errorf("Classify(%q) should not be auth-related, got %+v", tt.url, v)
			}
		})
	}
}

func TestClassifyMalformedURLs(t *testing.T) {
	c := New()

	// All would trip the heuristic textually; parse failure wins
	malformed := []string{
		"http://ex ample.com/auth?token=1",
		"http://%zz/oauth?code=1",
		"://login?token=x",
		"https://example.com/auth\x7f?token=1",
	}

	for _, u := range malformed {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Classify(%q) panicked: %v", u, r)
				}
			}()
			if v := c.Classify(u); v.AuthRelated {
				t.Errorf("Classify(%q) should fail open to non-auth, got %+v", u, v)
			}
		}()
	}
}

func TestClassifyNeverPanics(t *testing.T) {
	c := New()

	garbage := []string{
		"\x00\x01\x02",
		"%%%%%%",
		"????####",
		"https://" + string(rune(0xFFFD)),
		"#?#?#?auth?token==&&",
	}

	for _, u := range garbage {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Classify(%q) panicked: %v", u, r)
				}
			}()
			_ = c.Classify(u)
		}()
	}
}

func TestClassifyIdempotent(t *testing.T) {
	c := New()

	urls := []string{
		"https://accounts.example.com/oauth/authorize?code=abc",
		"https://example.com/pricing",
		"http://ex ample.com/auth?token=1",
	}

	for _, u := range urls {
		first := c.Classify(u)
		for i := 0; i < 10; i++ {
			if got := c.Classify(u); got != first {
				t.Errorf("Classify(%q) not stable: %+v then %+v", u, first, got)
			}
		}
	}
}

func TestClassifyParamPreference(t *testing.T) {
	c := New()

	// Multiple token params: verdict picks the base-order first one,
	// deterministically
	v := c.Classify("https://example.com/callback?access_token=a&token=b&code=c")
	if !v.AuthRelated {
		t.Fatal("should be auth-related")
	}
	if v.Param != "token" {
		t.Errorf("param = %q, want base-order first %q", v.Param, "token")
	}
}

func TestClassifyExtraKeywords(t *testing.T) {
	c := New()
	c.SetRules(&Rules{ExtraKeywords: []string{"verify"}})

	if !c.IsAuthRelated("https://example.com/verify?token=x") {
		t.Error("extra keyword should extend the heuristic")
	}

	// Base set remains active
	if !c.IsAuthRelated("https://example.com/login?token=x") {
		t.Error("base keywords should survive a rules swap")
	}
}

func TestClassifyExtraParams(t *testing.T) {
	c := New()
	c.SetRules(&Rules{ExtraParams: []string{"id_token"}})

	if !c.IsAuthRelated("https://example.com/callback#id_token=x") {
		t.Error("extra param should extend the heuristic")
	}
}

func TestClassifyBypassHosts(t *testing.T) {
	c := New()
	c.SetRules(&Rules{BypassHosts: []string{"*.internal.example"}})

	u := "https://sso.internal.example/oauth?token=x"
	if c.IsAuthRelated(u) {
		t.Error("bypass host should never classify as auth-related")
	}

	if !c.IsAuthRelated("https://sso.other.example/oauth?token=x") {
		t.Error("non-bypassed host should classify normally")
	}
}

func TestClassifyForceHosts(t *testing.T) {
	c := New()
	c.SetRules(&Rules{ForceHosts: []string{"idp.example.com"}})

	// No keyword anywhere, but the host is forced and a token is present
	v := c.Classify("https://idp.example.com/finish?code=x")
	if !v.AuthRelated {
		t.Fatal("force host should waive the keyword check")
	}
	if v.Keyword != "host-rule" {
		t.Errorf("keyword = %q, want host-rule marker", v.Keyword)
	}

	// Token requirement is not waived
	if c.IsAuthRelated("https://idp.example.com/finish") {
		t.Error("force host without a token param should stay non-auth")
	}
}

func TestSetRulesNilResets(t *testing.T) {
	c := New()
	c.SetRules(&Rules{ExtraKeywords: []string{"verify"}})
	c.SetRules(nil)

	if c.IsAuthRelated("https://example.com/verify?token=x") {
		t.Error("nil rules should reset to the base heuristic")
	}
}

func TestRulesValidate(t *testing.T) {
	good := &Rules{
		ExtraKeywords: []string{"verify"},
		BypassHosts:   []string{"*.example.com"},
	}
	if err := good.Validate(); err != nil {
		t.Errorf("valid rules should pass: %v", err)
	}

	bad := []*Rules{
		{BypassHosts: []string{"[unclosed"}},
		{ForceHosts: []string{"[unclosed"}},
		{ExtraKeywords: []string{"  "}},
		{ExtraParams: []string{""}},
	}
	for i, r := range bad {
		if err := r.Validate(); err == nil {
			t.Errorf("rules[%d] should fail validation", i)
		}
	}
}

func BenchmarkClassify(b *testing.B) {
	c := New()
	u := "https://accounts.example.com/oauth/authorize?client_id=x&code=abc123"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Classify(u)
	}
}
