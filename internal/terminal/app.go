package terminal

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"booknest/internal/app"
	"booknest/internal/book"
	"booknest/internal/screen"

	"github.com/sirupsen/logrus"
)

var errQuit = errors.New("quit")

const birthdateLayout = "2006-01-02"

// App drives one screen at a time. Controllers navigate through the Router;
// the switch happens after the action that requested it returns.
type App struct {
	svc     *app.Services
	console *Console
	router  *Router
	log     logrus.FieldLogger
}

func NewApp(svc *app.Services, console *Console, log logrus.FieldLogger) *App {
	return &App{
		svc:     svc,
		console: console,
		router:  &Router{},
		log:     log,
	}
}

// Run starts at the login screen and returns when the user quits or the
// input ends.
func (a *App) Run(ctx context.Context) error {
	route, params := screen.RouteLogin, screen.Params(nil)
	for {
		var err error
		switch route {
		case screen.RouteLogin:
			err = a.runLogin(ctx)
		case screen.RouteSignup:
			err = a.runSignup(ctx)
		case screen.RouteDashboard:
			err = a.runDashboard(ctx, params[screen.ParamUID])
		default:
			return fmt.Errorf("unknown route %q", route)
		}
		if errors.Is(err, errQuit) || errors.Is(err, ErrClosed) {
			return nil
		}
		if err != nil {
			return err
		}
		next, p, ok := a.router.Take()
		if !ok {
			return nil
		}
		a.log.WithField("route", next).Debug("navigate")
		route, params = next, p
	}
}

func (a *App) runLogin(ctx context.Context) error {
	login := screen.NewLogin(a.svc.Auth, a.svc.Sessions, a.router, a.console, a.log)
	login.Mount()
	defer login.Unmount()

	for !a.router.Pending() {
		a.console.Printf("\nBookNest\n  1) Log in\n  2) Sign up\n  q) Quit\n")
		choice, err := a.console.Prompt("> ")
		if err != nil {
			return err
		}
		switch strings.TrimSpace(choice) {
		case "1":
			email, err := a.console.Prompt("Email: ")
			if err != nil {
				return err
			}
			password, err := a.console.Prompt("Password: ")
			if err != nil {
				return err
			}
			login.SetEmail(email)
			login.SetPassword(password)
			login.Submit(ctx)
		case "2":
			login.GoToSignup()
		case "q":
			return errQuit
		default:
			a.console.Printf("Unknown option %q\n", choice)
		}
	}
	return nil
}

var signupPrompts = []struct {
	field string
	label string
}{
	{screen.FieldFirstName, "First name: "},
	{screen.FieldLastName, "Last name: "},
	{screen.FieldRole, "Role: "},
	{screen.FieldEmail, "Email: "},
	{screen.FieldPassword, "Password: "},
	{screen.FieldConfirmPassword, "Confirm password: "},
}

func (a *App) runSignup(ctx context.Context) error {
	signup := screen.NewSignup(a.svc.Auth, a.router, a.console, a.log)

	for !a.router.Pending() {
		a.console.Printf("\nCreate an account\n  1) Fill in the form\n  2) Back to login\n  q) Quit\n")
		choice, err := a.console.Prompt("> ")
		if err != nil {
			return err
		}
		switch strings.TrimSpace(choice) {
		case "1":
			for _, p := range signupPrompts {
				v, err := a.console.Prompt(p.label)
				if err != nil {
					return err
				}
				signup.Set(p.field, v)
			}
			birthdate, err := a.promptDate("Birthdate (YYYY-MM-DD, blank for today): ")
			if err != nil {
				return err
			}
			signup.SetBirthdate(birthdate)
			signup.Submit(ctx)
		case "2":
			signup.GoToLogin()
		case "q":
			return errQuit
		default:
			a.console.Printf("Unknown option %q\n", choice)
		}
	}
	return nil
}

func (a *App) promptDate(label string) (time.Time, error) {
	for {
		v, err := a.console.Prompt(label)
		if err != nil {
			return time.Time{}, err
		}
		v = strings.TrimSpace(v)
		if v == "" {
			return time.Time{}, nil
		}
		t, err := time.Parse(birthdateLayout, v)
		if err == nil {
			return t, nil
		}
		a.console.Alert("Please enter a date like 2006-01-02.")
	}
}

func (a *App) runDashboard(ctx context.Context, uid string) error {
	inventory := screen.NewInventory(a.svc.Books, a.console, a.console, a.log)
	profile := screen.NewProfile(a.svc.Profiles, uid, a.log)
	dash := screen.NewDashboard(uid, a.svc.Auth, inventory, profile, a.router, a.console, a.log)
	dash.Mount(ctx)

	for !a.router.Pending() {
		active := dash.Active()
		a.console.Printf("\n%s\n", renderTabs(active))
		switch active {
		case screen.TabDashboard:
			a.console.Printf("Welcome to the Dashboard!\n")
		case screen.TabInventory:
			a.console.Printf("%s", renderInventory(inventory.View()))
			a.console.Printf("r) refresh  a) add  x N) delete  e N) edit  s TEXT) search\n")
		case screen.TabProfile:
			a.console.Printf("%s", renderProfile(profile.View()))
		}
		a.console.Printf("d) dashboard  i) inventory  p) profile  o) log out  q) quit\n")

		line, err := a.console.Prompt("> ")
		if err != nil {
			return err
		}
		cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
		switch cmd {
		case "d":
			dash.Select(ctx, screen.TabDashboard)
		case "i":
			dash.Select(ctx, screen.TabInventory)
		case "p":
			dash.Select(ctx, screen.TabProfile)
		case "o":
			dash.Logout(ctx)
		case "q":
			return errQuit
		default:
			if active != screen.TabInventory {
				a.console.Printf("Unknown option %q\n", line)
				continue
			}
			if err := a.inventoryCommand(ctx, inventory, cmd, strings.TrimSpace(arg)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *App) inventoryCommand(ctx context.Context, inv *screen.Inventory, cmd, arg string) error {
	switch cmd {
	case "r":
		inv.Refresh(ctx)
	case "a":
		return a.addBook(ctx, inv)
	case "x":
		if id, ok := a.bookID(inv, arg); ok {
			inv.Delete(ctx, id)
		}
	case "e":
		if id, ok := a.bookID(inv, arg); ok {
			inv.Edit(ctx, id)
		}
	case "s":
		inv.SetSearch(arg)
	default:
		a.console.Printf("Unknown option %q\n", cmd)
	}
	return nil
}

func (a *App) bookID(inv *screen.Inventory, arg string) (string, bool) {
	books := inv.View().Books
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(books) {
		a.console.Printf("No book #%s\n", arg)
		return "", false
	}
	return books[n-1].ID, true
}

// addBook walks the add-book form. Blank answers keep the current value.
func (a *App) addBook(ctx context.Context, inv *screen.Inventory) error {
	inv.OpenModal()
	for {
		draft := inv.View().Draft
		for _, key := range book.FormKeys {
			v, err := a.console.Prompt(fmt.Sprintf("%s [%s]: ", key, draft.Get(key)))
			if err != nil {
				return err
			}
			if v = strings.TrimSpace(v); v != "" {
				if err := inv.SetField(key, v); err != nil {
					return err
				}
			}
		}

		for {
			choice, err := a.console.Prompt("s) save  f) fill from ISBN  c) cancel  > ")
			if err != nil {
				return err
			}
			switch strings.TrimSpace(choice) {
			case "s":
				if inv.Save(ctx) {
					return nil
				}
			case "f":
				inv.Autofill(ctx)
			case "c":
				inv.CloseModal()
				return nil
			default:
				continue
			}
			break
		}
	}
}
