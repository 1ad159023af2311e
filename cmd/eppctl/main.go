package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/danmuck/eppctl/internal/epp"
	"github.com/danmuck/eppctl/internal/gateway"
	"github.com/danmuck/eppctl/internal/observability"
	"github.com/danmuck/eppctl/internal/protocol/session"
)

var (
	okText   = color.New(color.FgGreen).SprintFunc()
	badText  = color.New(color.FgRed).SprintFunc()
	dimText  = color.New(color.Faint).SprintFunc()
	headText = color.New(color.Bold).SprintFunc()
)

const usage = `usage: eppctl [-config eppctl.toml] <command> [args]

commands:
  hello              print the server greeting
  check <name>...    check domain availability
  info <name>        show a domain
  poll               peek the message queue
  ack <id>           dequeue a message
  serve              run the HTTP gateway
`

func main() {
	configPath := flag.String("config", "eppctl.toml", "config path")
	timeout := flag.Duration("timeout", 60*time.Second, "overall command timeout")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	observability.InitLogger("eppctl")
	cfg, err := loadRuntimeConfig(*configPath)
	if err != nil {
		fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if args[0] == "serve" {
		if err := serve(ctx, cfg); err != nil {
			fatal(err)
		}
		return
	}

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()
	if err := run(ctx, cfg, args[0], args[1:]); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "%s %v\n", badText("eppctl:"), err)
	os.Exit(1)
}

func run(ctx context.Context, cfg runtimeConfig, name string, args []string) error {
	switch name {
	case "hello":
		s, err := session.Dial(ctx, cfg.Session)
		if err != nil {
			return err
		}
		defer s.Close()
		g, err := s.Hello(ctx)
		if err != nil {
			return err
		}
		printGreeting(g)
		return nil
	case "check":
		if len(args) == 0 {
			return errors.New("check: at least one name is required")
		}
		return withSession(ctx, cfg, func(s *session.Session) error {
			resp, err := s.Execute(ctx, epp.DomainCheck{Names: args})
			if err != nil {
				return err
			}
			printCheck(resp)
			return nil
		})
	case "info":
		if len(args) != 1 {
			return errors.New("info: exactly one name is required")
		}
		return withSession(ctx, cfg, func(s *session.Session) error {
			resp, err := s.Execute(ctx, epp.DomainInfo{Name: epp.DomainInfoName{Name: args[0], Hosts: epp.HostsAll}})
			if err != nil {
				return err
			}
			printInfo(resp)
			return nil
		})
	case "poll":
		return withSession(ctx, cfg, func(s *session.Session) error {
			resp, err := s.Execute(ctx, epp.PollRequest{})
			if err != nil {
				return err
			}
			printQueue(resp)
			return nil
		})
	case "ack":
		if len(args) != 1 {
			return errors.New("ack: exactly one message id is required")
		}
		return withSession(ctx, cfg, func(s *session.Session) error {
			resp, err := s.Execute(ctx, epp.PollAck{MessageID: args[0]})
			if err != nil {
				return err
			}
			printQueue(resp)
			return nil
		})
	default:
		return fmt.Errorf("unknown command %q", name)
	}
}

// withSession dials, logs in, runs fn and logs out.
func withSession(ctx context.Context, cfg runtimeConfig, fn func(*session.Session) error) error {
	s, err := login(ctx, cfg)
	if err != nil {
		return err
	}
	runErr := fn(s)
	if err := s.Logout(ctx); err != nil {
		log.Debug().Err(err).Msg("eppctl logout")
	}
	return runErr
}

func login(ctx context.Context, cfg runtimeConfig) (*session.Session, error) {
	s, err := session.Dial(ctx, cfg.Session)
	if err != nil {
		return nil, err
	}
	if _, err := s.Login(ctx, cfg.Credentials); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func serve(ctx context.Context, cfg runtimeConfig) error {
	sup := gateway.NewSupervisor(func(ctx context.Context) (gateway.Session, error) {
		return login(ctx, cfg)
	}, cfg.Session.Backoff, cfg.Session.Clock)
	srv := gateway.New(cfg.Gateway, sup)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sup.Run(ctx) })
	g.Go(func() error { return srv.Run(ctx) })
	return g.Wait()
}

func printGreeting(g epp.Greeting) {
	fmt.Printf("%s %s\n", headText("server"), g.ServerID)
	fmt.Printf("%s %s\n", headText("date"), g.ServerDate.Format(time.RFC3339))
	for _, uri := range g.ServiceMenu.ObjectURIs {
		fmt.Printf("  %s %s\n", dimText("obj"), uri)
	}
	for _, uri := range g.ExtensionURIs() {
		fmt.Printf("  %s %s\n", dimText("ext"), uri)
	}
}

func printCheck(resp *epp.Response) {
	chk, ok := resp.Data.(*epp.DomainCheckData)
	if !ok {
		fmt.Println(dimText(resp.Code().String()))
		return
	}
	for _, r := range chk.Results {
		if r.Name.Available {
			fmt.Printf("%s %s\n", okText("available"), r.Name.Value)
			continue
		}
		fmt.Printf("%s %s %s\n", badText("taken    "), r.Name.Value, dimText(r.Reason))
	}
}

func printInfo(resp *epp.Response) {
	inf, ok := resp.Data.(*epp.DomainInfoData)
	if !ok {
		fmt.Println(dimText(resp.Code().String()))
		return
	}
	fmt.Printf("%s %s (%s)\n", headText("domain"), inf.Name, inf.ROID)
	for _, st := range inf.Statuses {
		fmt.Printf("  %s %s\n", dimText("status"), st.Value)
	}
	if inf.Registrant != "" {
		fmt.Printf("  %s %s\n", dimText("registrant"), inf.Registrant)
	}
	if inf.NS != nil {
		for _, ns := range inf.NS.HostObjects {
			fmt.Printf("  %s %s\n", dimText("ns"), ns)
		}
		for _, h := range inf.NS.HostAttributes {
			fmt.Printf("  %s %s\n", dimText("ns"), h.Name)
		}
	}
	if inf.ExpiresAt != nil {
		fmt.Printf("  %s %s\n", dimText("expires"), inf.ExpiresAt.Format(time.RFC3339))
	}
}

func printQueue(resp *epp.Response) {
	fmt.Println(okText(resp.Code().String()))
	q := resp.MsgQ
	if q == nil {
		return
	}
	fmt.Printf("  %s %d\n", dimText("count"), q.Count)
	if q.ID != "" {
		fmt.Printf("  %s %s\n", dimText("id"), q.ID)
	}
	if q.Msg != nil {
		fmt.Printf("  %s %s\n", dimText("msg"), q.Msg.Text)
	}
	if raw, ok := resp.Data.(*epp.RawElement); ok {
		fmt.Printf("  %s %s\n", dimText("data"), raw.Fragment)
	}
}
