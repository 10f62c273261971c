package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/Domenick1991/flightbooking/internal/domain"
)

// Session is the engine surface the REPL drives.
type Session interface {
	Register(ctx context.Context, username, password string, initialBalance int64) error
	Login(ctx context.Context, username, password string) error
	Search(ctx context.Context, q domain.SearchQuery) ([]domain.Itinerary, error)
	Book(ctx context.Context, index int) (int64, error)
	Pay(ctx context.Context, reservationID int64) (int64, error)
	Cancel(ctx context.Context, reservationID int64) (*domain.CancelReceipt, error)
	ListReservations(ctx context.Context) ([]domain.Booking, error)
	Username() string
}

const menu = `*** Please enter one of the following commands ***
> create <username> <password> <initial amount>
> login <username> <password>
> search <origin city> <destination city> <direct> <day> <num itineraries>
> book <itinerary id>
> pay <reservation id>
> reservations
> cancel <reservation id>
> quit
`

type REPL struct {
	session Session
	in      io.Reader
	out     io.Writer
	prompt  bool
}

// NewREPL reads commands from in and writes results to out. With prompt
// set, the menu and a "> " prompt are printed as well.
func NewREPL(session Session, in io.Reader, out io.Writer, prompt bool) *REPL {
	return &REPL{session: session, in: in, out: out, prompt: prompt}
}

func (r *REPL) Run(ctx context.Context) error {
	if r.prompt {
		fmt.Fprint(r.out, menu)
	}

	scanner := bufio.NewScanner(r.in)
	for {
		if r.prompt {
			fmt.Fprint(r.out, "> ")
		}
		if !scanner.Scan() {
			return scanner.Err()
		}

		tokens := tokenize(scanner.Text())
		if len(tokens) == 0 {
			continue
		}
		if tokens[0] == "quit" {
			fmt.Fprintln(r.out, "Goodbye")
			return nil
		}
		fmt.Fprint(r.out, r.Execute(ctx, tokens))

		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// Execute runs one tokenized command and returns its output.
func (r *REPL) Execute(ctx context.Context, tokens []string) string {
	args := tokens[1:]
	switch tokens[0] {
	case "create":
		if len(args) != 3 {
			return "Error: Please provide a username, password, and initial amount in the account\n"
		}
		amount, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return invalidNumber(args[2])
		}
		return formatCreate(args[0], r.session.Register(ctx, args[0], args[1], amount))

	case "login":
		if len(args) != 2 {
			return "Error: Please provide a username and password\n"
		}
		return formatLogin(args[0], r.session.Login(ctx, args[0], args[1]))

	case "search":
		if len(args) != 5 {
			return "Error: Please provide all search parameters <origin_city> <dest_city> <direct> <date> <nb itineraries>\n"
		}
		q := domain.SearchQuery{Origin: args[0], Destination: args[1], DirectOnly: args[2] == "1"}
		var err error
		if q.DayOfMonth, err = strconv.Atoi(args[3]); err != nil {
			return invalidNumber(args[3])
		}
		if q.MaxResults, err = strconv.Atoi(args[4]); err != nil {
			return invalidNumber(args[4])
		}
		list, err := r.session.Search(ctx, q)
		return formatSearch(list, err)

	case "book":
		if len(args) != 1 {
			return "Error: Please provide an itinerary_id\n"
		}
		index, err := strconv.Atoi(args[0])
		if err != nil {
			return invalidNumber(args[0])
		}
		id, err := r.session.Book(ctx, index)
		return formatBook(index, id, err)

	case "pay":
		if len(args) != 1 {
			return "Error: Please provide a reservation_id\n"
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return invalidNumber(args[0])
		}
		balance, err := r.session.Pay(ctx, id)
		return formatPay(id, r.session.Username(), balance, err)

	case "reservations":
		list, err := r.session.ListReservations(ctx)
		return formatReservations(list, err)

	case "cancel":
		if len(args) != 1 {
			return "Error: Please provide a reservation_id\n"
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return invalidNumber(args[0])
		}
		_, err = r.session.Cancel(ctx, id)
		return formatCancel(id, err)

	default:
		return fmt.Sprintf("Error: unrecognized command '%s'\n", tokens[0])
	}
}

func invalidNumber(s string) string {
	return fmt.Sprintf("Error: %q is not a number\n", s)
}

// tokenize splits on whitespace. A double-quoted run is one token, so city
// names such as "Seattle WA" survive.
func tokenize(line string) []string {
	var (
		tokens  []string
		current strings.Builder
		quoted  bool
		started bool
	)
	flush := func() {
		if started {
			tokens = append(tokens, current.String())
			current.Reset()
			started = false
		}
	}
	for _, r := range line {
		switch {
		case r == '"':
			if quoted {
				quoted = false
				continue
			}
			quoted, started = true, true
		case unicode.IsSpace(r) && !quoted:
			flush()
		default:
			current.WriteRune(r)
			started = true
		}
	}
	flush()
	return tokens
}
