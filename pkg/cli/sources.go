package cli

import (
	"fmt"
	"strings"

	urfave "github.com/urfave/cli/v2"

	"github.com/newscope/nctl/pkg/data"
	"github.com/newscope/nctl/pkg/sources"
)

var (
	domainFlag = &urfave.StringFlag{
		Name:    "domain",
		Aliases: []string{"d"},
		Usage:   "Source domain (e.g. example.com)",
	}

	credibilityFlag = &urfave.IntFlag{
		Name:  "credibility",
		Usage: "Credibility score for trusted domains [1-10]",
		Value: 7,
	}

	fakeDomainFlag = &urfave.BoolFlag{
		Name:  "fake",
		Usage: "Mark the domain as a known fake-news source",
	}

	titleFlag = &urfave.StringFlag{
		Name:  "title",
		Usage: "Article title to cross-check against news coverage",
	}

	maxResultsFlag = &urfave.IntFlag{
		Name:  "max",
		Usage: "Max number of coverage results to inspect",
		Value: 10,
	}
)

var sourcesCmd = &urfave.Command{
	Name:  "sources",
	Usage: "Manage and check source domain credibility",
	Subcommands: []*urfave.Command{
		{
			Name:   "check",
			Usage:  "Check the credibility of a domain or URL",
			Flags:  []urfave.Flag{domainFlag},
			Action: runSourceCheckCmd,
		},
		{
			Name:   "add",
			Usage:  "Add or update a reviewed domain override",
			Flags:  []urfave.Flag{domainFlag, credibilityFlag, fakeDomainFlag},
			Action: runSourceAddCmd,
		},
		{
			Name:   "remove",
			Usage:  "Remove a reviewed domain override",
			Flags:  []urfave.Flag{domainFlag},
			Action: runSourceRemoveCmd,
		},
		{
			Name:   "list",
			Usage:  "List reviewed domain overrides",
			Action: runSourceListCmd,
		},
		{
			Name:   "trusted",
			Usage:  "List all trusted domains, built-in and reviewed",
			Action: runSourceTrustedCmd,
		},
		{
			Name:   "verify",
			Usage:  "Cross-check a story title against news coverage (requires a NewsAPI key)",
			Flags:  []urfave.Flag{titleFlag, maxResultsFlag},
			Action: runSourceVerifyCmd,
		},
	},
}

func domainArg(c *urfave.Context) (string, error) {
	d := c.String(domainFlag.Name)
	if d == "" && c.Args().Present() {
		d = c.Args().First()
	}
	if d == "" {
		return "", fmt.Errorf("domain is required, use --%s", domainFlag.Name)
	}
	return strings.TrimSpace(d), nil
}

func runSourceCheckCmd(c *urfave.Context) error {
	domain, err := domainArg(c)
	if err != nil {
		return err
	}

	verifier, err := newVerifier(c)
	if err != nil {
		return err
	}
	return encode(verifier.CheckDomain(domain))
}

func runSourceAddCmd(c *urfave.Context) error {
	app := getConfig(c)

	domain, err := domainArg(c)
	if err != nil {
		return err
	}

	rec := &data.DomainRecord{
		Domain:      domain,
		Status:      data.DomainTrusted,
		Credibility: c.Int(credibilityFlag.Name),
	}
	if c.Bool(fakeDomainFlag.Name) {
		rec.Status = data.DomainKnownFake
		rec.Credibility = 0
	}

	if err := data.UpsertDomain(c.Context, app.DB, rec); err != nil {
		return err
	}
	return encode(rec)
}

func runSourceRemoveCmd(c *urfave.Context) error {
	app := getConfig(c)

	domain, err := domainArg(c)
	if err != nil {
		return err
	}
	return data.DeleteDomain(c.Context, app.DB, domain)
}

func runSourceListCmd(c *urfave.Context) error {
	app := getConfig(c)

	list, err := data.ListDomains(c.Context, app.DB)
	if err != nil {
		return err
	}
	return encode(list)
}

func runSourceTrustedCmd(c *urfave.Context) error {
	verifier, err := newVerifier(c)
	if err != nil {
		return err
	}
	return encode(verifier.TrustedDomains())
}

func runSourceVerifyCmd(c *urfave.Context) error {
	app := getConfig(c)

	title := c.String(titleFlag.Name)
	if title == "" && c.Args().Present() {
		title = strings.Join(c.Args().Slice(), " ")
	}
	if title == "" {
		return fmt.Errorf("title is required, use --%s", titleFlag.Name)
	}

	key, err := app.Keys.Get()
	if err != nil {
		return err
	}

	verifier, err := newVerifier(c)
	if err != nil {
		return err
	}

	checker := sources.NewCrossChecker(key, verifier)
	res, err := checker.Verify(c.Context, title, c.Int(maxResultsFlag.Name))
	if err != nil {
		return err
	}
	return encode(res)
}

// newVerifier builds a Verifier with the reviewed overrides applied.
func newVerifier(c *urfave.Context) (*sources.Verifier, error) {
	app := getConfig(c)

	trusted, fake, err := data.DomainOverrides(c.Context, app.DB)
	if err != nil {
		return nil, err
	}
	return sources.NewVerifier(
		sources.WithTrustedOverrides(trusted),
		sources.WithFakeOverrides(fake),
	), nil
}
