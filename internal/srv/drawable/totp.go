package drawable

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/jypelle/oledpi/internal/srv/screen"
	"github.com/pquerna/otp/totp"
)

const (
	totpPerPage = 6
	// seconds per code
	totpPeriod = 30
)

type TotpAccount struct {
	Issuer string
	Label  string
	Secret string
}

// Name is the short name shown next to the code.
func (a TotpAccount) Name() string {
	name := a.Issuer
	if name == "" {
		name, _, _ = strings.Cut(a.Label, " - ")
	}
	return Truncate(name, 7)
}

// Totp shows the current codes of up to six accounts per page.
type Totp struct {
	accounts []TotpAccount
	clock    clockwork.Clock
}

func NewTotp(accounts []TotpAccount, clock clockwork.Clock) *Totp {
	return &Totp{accounts: accounts, clock: clock}
}

func (t *Totp) Id() string {
	return "totp"
}

func (t *Totp) NewDrawable() screen.Drawable {
	return &totpPage{Totp: t}
}

type totpPage struct {
	*Totp
	page  int
	codes []string
	// period of the codes on screen
	step int64
}

func (d *totpPage) Expired() bool {
	return false
}

func (d *totpPage) Handle(cmd screen.Command) {
	switch cmd {
	case screen.NextPage:
		d.page++
		if d.page*totpPerPage >= len(d.accounts) {
			d.page = 0
		}
		d.codes = nil
	case screen.Redraw:
		d.codes = nil
	}
}

func (d *totpPage) Draw(c screen.Canvas, rng *rand.Rand) (bool, error) {
	start := min(d.page*totpPerPage, len(d.accounts))
	accounts := d.accounts[start:min(start+totpPerPage, len(d.accounts))]

	now := d.clock.Now()
	step := now.Unix() / totpPeriod
	if d.codes != nil && step == d.step {
		return false, nil
	}
	codes := make([]string, 0, len(accounts))
	for _, account := range accounts {
		code, err := totp.GenerateCode(account.Secret, now)
		if err != nil {
			d.codes, d.step = []string{}, step
			return true, fmt.Errorf("unable to generate code for %s: %w", account.Name(), err)
		}
		codes = append(codes, code)
	}
	d.codes = codes
	d.step = step

	c.Clear(screen.Black)
	y := 16
	for i, account := range accounts {
		AddLabel(c, largeFace, 0, y, codes[i], screen.White)
		AddLabel(c, mediumFace, 60, y, account.Name(), screen.White)
		y += 21
	}
	return true, nil
}
