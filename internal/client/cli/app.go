// Package cli is the linkbio terminal client. Every command goes through the
// client state store so the persisted session behaves like the web client's.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"

	"linkbio/internal/client/api"
	"linkbio/internal/client/nav"
	"linkbio/internal/client/state"
	"linkbio/pkg/dto"
	"linkbio/pkg/media"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

var ErrUsage = errors.New("usage")

type App struct {
	API   *api.Client
	Store *state.Store
	Tasks *state.Tasks
	Out   io.Writer
	// PasswordFD is the terminal read for password prompts.
	PasswordFD int
}

func New(client *api.Client, store *state.Store, out io.Writer) *App {
	return &App{
		API:        client,
		Store:      store,
		Tasks:      &state.Tasks{Store: store, API: client},
		Out:        out,
		PasswordFD: int(os.Stdin.Fd()),
	}
}

const usage = `commands:
  register <username>          create an account (prompts for password)
  login <username>             sign in (prompts for password)
  logout                       forget the saved session
  whoami                       show the signed-in user
  links                        list your links
  add <title> <url>            add a link
  edit <id> <title> <url>      change a link
  rm <id>                      delete a link
  theme <light|dark|calm|system>
  avatar <image-file>          upload a profile picture
  profile <username>           show a public profile
`

func (a *App) Usage() { fmt.Fprint(a.Out, usage) }

func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.Usage()
		return ErrUsage
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "register", "login":
		return a.authenticate(ctx, cmd, rest)
	case "logout":
		a.Tasks.Logout(ctx)
		fmt.Fprintln(a.Out, "Logged out.")
		return nil
	case "whoami":
		return a.whoami()
	case "links":
		return a.links(ctx)
	case "add":
		return a.add(ctx, rest)
	case "edit":
		return a.edit(ctx, rest)
	case "rm":
		return a.remove(ctx, rest)
	case "theme":
		return a.theme(ctx, rest)
	case "avatar":
		return a.avatar(ctx, rest)
	case "profile":
		return a.profile(ctx, rest)
	case "help":
		a.Usage()
		return nil
	default:
		a.Usage()
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}
}

// guard applies the dashboard route rule to commands that need a session.
func (a *App) guard() error {
	if nav.Resolve(nav.Dashboard, a.Store.State().Auth.IsAuthenticated) == nav.Login {
		return errors.New("not logged in; run `login <username>` first")
	}
	return nil
}

func (a *App) authenticate(ctx context.Context, cmd string, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: %s <username>", ErrUsage, cmd)
	}
	pw, err := a.password()
	if err != nil {
		return err
	}
	if cmd == "register" {
		err = a.Tasks.Register(ctx, args[0], pw)
	} else {
		err = a.Tasks.Login(ctx, args[0], pw)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Signed in as %s.\n", args[0])
	return nil
}

func (a *App) password() (string, error) {
	fmt.Fprint(a.Out, "Password: ")
	pw, err := readPassword(a.PasswordFD)
	fmt.Fprintln(a.Out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}

func (a *App) whoami() error {
	if err := a.guard(); err != nil {
		return err
	}
	u := a.Store.State().Auth.User
	fmt.Fprintf(a.Out, "%s (id %d, theme %s)\n", u.Username, u.ID, dto.ResolvePreference(u.ThemePreference)[dto.ThemeKey])
	if u.ProfileImageURL != "" {
		fmt.Fprintf(a.Out, "avatar: %s\n", u.ProfileImageURL)
	}
	return nil
}

func (a *App) links(ctx context.Context) error {
	if err := a.guard(); err != nil {
		return err
	}
	if err := a.Tasks.FetchLinks(ctx); err != nil {
		return err
	}
	items := a.Store.State().Links.Items
	if len(items) == 0 {
		fmt.Fprintln(a.Out, "No links yet.")
		return nil
	}
	tw := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tURL")
	for _, l := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", l.ID, l.Title, l.URL)
	}
	return tw.Flush()
}

func (a *App) add(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: add <title> <url>", ErrUsage)
	}
	if err := a.guard(); err != nil {
		return err
	}
	if err := a.Tasks.AddLink(ctx, args[0], args[1]); err != nil {
		return err
	}
	items := a.Store.State().Links.Items
	fmt.Fprintf(a.Out, "Added link %d.\n", items[len(items)-1].ID)
	return nil
}

func (a *App) edit(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("%w: edit <id> <title> <url>", ErrUsage)
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := a.guard(); err != nil {
		return err
	}
	if err := a.Tasks.EditLink(ctx, id, args[1], args[2]); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Updated link %d.\n", id)
	return nil
}

func (a *App) remove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: rm <id>", ErrUsage)
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := a.guard(); err != nil {
		return err
	}
	if err := a.Tasks.RemoveLink(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Deleted link %d.\n", id)
	return nil
}

func (a *App) theme(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: theme <%s>", ErrUsage, themeChoices())
	}
	if err := a.guard(); err != nil {
		return err
	}
	if err := a.Tasks.ChangeTheme(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Theme set to %s.\n", args[0])
	return nil
}

func (a *App) avatar(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: avatar <image-file>", ErrUsage)
	}
	if err := a.guard(); err != nil {
		return err
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	ct := mime.TypeByExtension(filepath.Ext(args[0]))
	if ct == "" {
		ct = media.Sniff(data)
	}
	res, err := a.API.UploadAvatar(ctx, media.File{Name: filepath.Base(args[0]), ContentType: ct, Data: data})
	switch {
	case errors.Is(err, media.ErrUnsupported):
		return errors.New("only image files are allowed")
	case errors.Is(err, media.ErrTooLarge):
		return fmt.Errorf("file too large (max %d bytes)", a.API.MaxAvatarBytes)
	case err != nil:
		return err
	}
	fmt.Fprintf(a.Out, "Profile picture: %s\n", res.ProfileImageURL)
	return nil
}

func (a *App) profile(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: profile <username>", ErrUsage)
	}
	v, _ := nav.NewProfileLoader(a.API).Load(ctx, args[0])
	switch {
	case v.NotFound:
		fmt.Fprintf(a.Out, "User not found: @%s\n", args[0])
		return nil
	case v.Error != "":
		return errors.New(v.Error)
	}
	p := v.Profile
	fmt.Fprintf(a.Out, "@%s  [%s]\n", p.Username, dto.ResolvePreference(p.ThemePreference)[dto.ThemeKey])
	if p.ProfileImageURL != "" {
		fmt.Fprintln(a.Out, p.ProfileImageURL)
	}
	if len(p.Links) == 0 {
		fmt.Fprintln(a.Out, "No links yet.")
		return nil
	}
	for _, l := range p.Links {
		title := l.Title
		if title == "" {
			title = l.URL
		}
		fmt.Fprintf(a.Out, "- %s: %s\n", title, l.URL)
	}
	return nil
}

func parseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: link id must be a positive number", ErrUsage)
	}
	return id, nil
}

func themeChoices() string {
	names := make([]string, len(dto.Themes))
	for i, t := range dto.Themes {
		names[i] = string(t)
	}
	return strings.Join(names, "|")
}
