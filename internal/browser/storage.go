package browser

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
	json "github.com/json-iterator/go"

	"github.com/xkilldash9x/ytbrief/internal/credential"
)

// cookieParams converts saved cookies to Network.setCookies parameters.
func cookieParams(cookies []credential.Cookie) []*network.CookieParam {
	params := make([]*network.CookieParam, 0, len(cookies))
	for _, c := range cookies {
		p := &network.CookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
		}
		switch strings.ToLower(c.SameSite) {
		case "strict":
			p.SameSite = network.CookieSameSiteStrict
		case "lax":
			p.SameSite = network.CookieSameSiteLax
		case "none":
			p.SameSite = network.CookieSameSiteNone
		}
		if !c.Session() {
			sec, frac := math.Modf(c.Expires)
			t := cdp.TimeSinceEpoch(time.Unix(int64(sec), int64(frac*1e9)))
			p.Expires = &t
		}
		params = append(params, p)
	}
	return params
}

// localStorageScript seeds localStorage for each saved origin when a document
// of that origin loads. Origins without entries are skipped.
func localStorageScript(origins []credential.OriginState) (string, error) {
	seed := make(map[string]map[string]string)
	for _, o := range origins {
		if len(o.LocalStorage) == 0 {
			continue
		}
		items := make(map[string]string, len(o.LocalStorage))
		for _, kv := range o.LocalStorage {
			items[kv.Name] = kv.Value
		}
		seed[o.Origin] = items
	}
	if len(seed) == 0 {
		return "", nil
	}
	data, err := json.Marshal(seed)
	if err != nil {
		return "", fmt.Errorf("encoding local storage: %w", err)
	}
	return `(() => {
  const seed = ` + string(data) + `;
  const items = seed[location.origin];
  if (!items) return;
  try {
    for (const [k, v] of Object.entries(items)) {
      if (localStorage.getItem(k) === null) localStorage.setItem(k, v);
    }
  } catch (e) {}
})();`, nil
}

// restoreState installs the saved cookies and localStorage on the target.
func restoreState(state *credential.StorageState) chromedp.Tasks {
	return chromedp.Tasks{
		chromedp.ActionFunc(func(ctx context.Context) error {
			if len(state.Cookies) == 0 {
				return nil
			}
			if err := network.SetCookies(cookieParams(state.Cookies)).Do(ctx); err != nil {
				return fmt.Errorf("restoring cookies: %w", err)
			}
			return nil
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			script, err := localStorageScript(state.Origins)
			if err != nil || script == "" {
				return err
			}
			if _, err := page.AddScriptToEvaluateOnNewDocument(script).Do(ctx); err != nil {
				return fmt.Errorf("restoring local storage: %w", err)
			}
			return nil
		}),
	}
}

const readLocalStorage = `(() => {
  const out = { origin: location.origin, items: [] };
  try {
    for (let i = 0; i < localStorage.length; i++) {
      const k = localStorage.key(i);
      out.items.push([k, localStorage.getItem(k)]);
    }
  } catch (e) {}
  return JSON.stringify(out);
})()`

// captureState reads every cookie of the browser plus the localStorage of the
// current page's origin.
func captureState(ctx context.Context, state *credential.StorageState) error {
	cookies, err := storage.GetCookies().Do(ctx)
	if err != nil {
		return fmt.Errorf("reading cookies: %w", err)
	}
	state.Cookies = make([]credential.Cookie, 0, len(cookies))
	for _, c := range cookies {
		saved := credential.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: string(c.SameSite),
		}
		if c.Session {
			saved.Expires = -1
		}
		state.Cookies = append(state.Cookies, saved)
	}

	var raw string
	if err := chromedp.Evaluate(readLocalStorage, &raw).Do(ctx); err != nil {
		return fmt.Errorf("reading local storage: %w", err)
	}
	var dump struct {
		Origin string      `json:"origin"`
		Items  [][2]string `json:"items"`
	}
	if err := json.Unmarshal([]byte(raw), &dump); err != nil {
		return fmt.Errorf("decoding local storage: %w", err)
	}
	origin := credential.OriginState{Origin: dump.Origin}
	for _, kv := range dump.Items {
		origin.LocalStorage = append(origin.LocalStorage, credential.NameValue{Name: kv[0], Value: kv[1]})
	}
	state.Origins = []credential.OriginState{origin}
	return nil
}
