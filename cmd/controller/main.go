// Command controller is a terminal stand-in for the phone controller page:
// it attaches to a relay room, walks the lobby (mode, seat, ready) and
// sends paddle input, printing whatever the renderer broadcasts.
//
// Commands: pvc, pvp, p1, p2, ready, back, u, d, s, pause, quit.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/badenpong/cloud-relay/internal/protocol"
	"github.com/badenpong/cloud-relay/pkg/controller"
	"github.com/coder/websocket"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "controller",
		Usage: "terminal controller client for the cloud relay",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "server",
				Value: "ws://localhost:10000/ws",
				Usage: "relay websocket endpoint",
			},
			&cli.StringFlag{
				Name:  "room",
				Value: "",
				Usage: "room to join (server default when empty)",
			},
		},
		Action: run,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	endpoint, err := attachURL(cmd.String("server"), cmd.String("room"))
	if err != nil {
		return err
	}

	conn, _, err := websocket.Dial(ctx, endpoint, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", endpoint, err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	session := controller.NewSession()
	seq := controller.NewSequencer()

	send := func(frames ...[]byte) {
		for _, f := range frames {
			if f == nil {
				continue
			}
			_ = conn.Write(ctx, websocket.MessageText, f)
		}
	}

	startCountdown := func() {
		session.HandleStart()
		seq.Start(func(remaining int) {
			if remaining > 0 {
				fmt.Printf("  starting in %d...\n", remaining)
			}
		}, func() {
			session.CountdownDone()
			fmt.Println("  go! (u/d to move, s to stop)")
		})
	}

	// Socket reader: relay frames drive the session.
	go func() {
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				fmt.Println("disconnected")
				return
			}
			in, ok := protocol.Decode(data)
			if !ok {
				continue
			}
			switch in.Type {
			case protocol.TypeHello:
				var h protocol.Hello
				_ = json.Unmarshal(in.Raw, &h)
				fmt.Printf("joined room %s as %s\n", h.Room, h.CID)
			case protocol.TypeRenderer:
				var p protocol.RendererPresence
				_ = json.Unmarshal(in.Raw, &p)
				if p.Online {
					fmt.Println("renderer online")
				} else {
					fmt.Println("renderer offline")
				}
			case protocol.TypeLobby:
				session.HandleLobby(in.Raw)
				printSeats(session)
			case protocol.TypeStart:
				startCountdown()
			default:
				fmt.Printf("<- %s\n", strings.TrimSpace(string(in.Raw)))
			}
		}
	}()

	fmt.Println("commands: pvc pvp p1 p2 ready back u d s pause quit")
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		switch strings.TrimSpace(sc.Text()) {
		case "pvc":
			send(session.ChooseMode(protocol.ModePVC)...)
		case "pvp":
			send(session.ChooseMode(protocol.ModePVP)...)
		case "p1":
			send(session.ChooseSeat(protocol.SeatP1)...)
		case "p2":
			send(session.ChooseSeat(protocol.SeatP2)...)
		case "ready":
			frames, countdown := session.PressReady()
			send(frames...)
			if countdown {
				startCountdown()
			}
		case "back":
			session.Back()
		case "u":
			send(session.Move(-1))
		case "d":
			send(session.Move(+1))
		case "s":
			send(session.Move(0))
		case "pause":
			send(session.Pause())
		case "quit":
			return nil
		case "":
		default:
			fmt.Println("unknown command")
		}
	}
	return sc.Err()
}

func attachURL(server, room string) (string, error) {
	u, err := url.Parse(server)
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	q := u.Query()
	q.Set("role", protocol.RoleController)
	if room != "" {
		q.Set("room", room)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func printSeats(session *controller.Session) {
	for seat, v := range session.SeatViews() {
		marker := " "
		if v.Selected {
			marker = "*"
		}
		fmt.Printf("  [%s] %s selectable=%v ready=%v\n", marker, seat, v.Selectable, v.Ready)
	}
}
