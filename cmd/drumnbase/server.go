package main

import (
	"bufio"
	"fmt"
	"net"
	"strings"

	"github.com/filipkocis/drumnbase/internal/cluster"
	"github.com/filipkocis/drumnbase/internal/log"
)

// server is the long-running query listener bound by the serve
// subcommand: a plain newline-delimited text protocol layered directly
// over TCP, since the engine has no wire format of its own to speak
// (§10's "thin front-end" scope does not extend to a binary protocol).
type server struct {
	cluster *cluster.Cluster
	log     log.Sink
}

func newServer(c *cluster.Cluster, logSink log.Sink) *server {
	return &server{cluster: c, log: logSink}
}

// ListenAndServe accepts connections on addr until the listener errors,
// handling each on its own goroutine.
func (s *server) ListenAndServe(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	defer lis.Close()

	s.log.Info("listening", map[string]any{"addr": addr})
	for {
		conn, err := lis.Accept()
		if err != nil {
			return fmt.Errorf("accept failed: %w", err)
		}
		go s.handle(conn)
	}
}

// handle runs one connection's protocol: a single "user\tpassword\tdatabase"
// auth line, then a sequence of one-statement-per-line queries, each
// answered with "OK <result>" or "ERR <message>" until the client closes
// the connection.
func (s *server) handle(conn net.Conn) {
	defer conn.Close()
	reader := bufio.NewReader(conn)
	writer := bufio.NewWriter(conn)

	authLine, err := reader.ReadString('\n')
	if err != nil {
		return
	}
	parts := strings.SplitN(strings.TrimRight(authLine, "\r\n"), "\t", 3)
	if len(parts) != 3 {
		s.reply(writer, "ERR malformed auth line, expected user\\tpassword\\tdatabase")
		return
	}
	username, password, database := parts[0], parts[1], parts[2]

	s.reply(writer, "OK connected")

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		stmt := strings.TrimRight(line, "\r\n")
		if stmt == "" {
			continue
		}
		if stmt == "quit" {
			s.reply(writer, "OK bye")
			return
		}

		result, err := runStatement(s.cluster, username, password, database, stmt)
		if err != nil {
			s.reply(writer, "ERR "+err.Error())
			continue
		}
		s.reply(writer, "OK "+result)
	}
}

func (s *server) reply(w *bufio.Writer, line string) {
	_, _ = w.WriteString(line)
	_, _ = w.WriteString("\n")
	_ = w.Flush()
}
