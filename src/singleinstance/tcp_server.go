package singleinstance

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"artifact-scanner/src/logutil"
)

const (
	residentHost = "127.0.0.1"

	pingRequest   = "PING"
	stopRequest   = "STOP"
	statusRequest = "STATUS"

	pongResponse  = "PONG\n"
	okResponse    = "OK\n"
	errorResponse = "ERROR\n"

	connDeadline = 3 * time.Second
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type tcpServer struct {
	h    Handler
	lis  net.Listener
	port int

	wg        sync.WaitGroup
	closeOnce sync.Once
	stopWatch func() bool
}

func newTCPServer(h Handler) *tcpServer { return &tcpServer{h: h} }

// start binds the first free port of the range. The server closes itself
// when ctx ends.
func (s *tcpServer) start(ctx context.Context) error {
	start, end := portRange()
	var lastErr error
	for port := start; port <= end; port++ {
		addr := net.JoinHostPort(residentHost, strconv.Itoa(port))
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			lastErr = err
			continue
		}
		s.lis, s.port = lis, port
		logutil.Info(logutil.Fields{"addr": addr}, "singleinstance: listening")
		s.wg.Add(1)
		go s.acceptLoop()
		s.stopWatch = context.AfterFunc(ctx, func() { _ = s.Close() })
		return nil
	}
	return fmt.Errorf("singleinstance: no free port in %d-%d: %w", start, end, lastErr)
}

func (s *tcpServer) Port() int { return s.port }

func (s *tcpServer) acceptLoop() {
	defer s.wg.Done()
	for {
		c, err := s.lis.Accept()
		if err != nil {
			return
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(c)
		}()
	}
}

func (s *tcpServer) handle(c net.Conn) {
	defer c.Close()
	_ = c.SetDeadline(time.Now().Add(connDeadline))

	line, err := bufio.NewReader(c).ReadString('\n')
	if err != nil {
		return
	}
	cmd := strings.TrimSpace(line)
	w := bufio.NewWriter(c)
	defer w.Flush()

	switch cmd {
	case pingRequest:
		_, _ = w.WriteString(pongResponse)
		return
	case stopRequest:
		logutil.Info(logutil.Fields{"remote": c.RemoteAddr().String()}, "singleinstance: stop requested")
		s.h.Stop()
		_, _ = w.WriteString(okResponse)
	case statusRequest:
		body, err := json.Marshal(s.h.Status())
		if err != nil {
			_, _ = w.WriteString(errorResponse + err.Error())
			return
		}
		_, _ = w.WriteString(okResponse)
		_, _ = w.Write(body)
		_, _ = w.WriteString("\n")
	default:
		_, _ = w.WriteString(errorResponse + "unknown command " + strconv.Quote(cmd))
	}
}

// Close stops accepting and waits for open connections to finish.
func (s *tcpServer) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if s.stopWatch != nil {
			s.stopWatch()
		}
		if s.lis != nil {
			err = s.lis.Close()
		}
		s.wg.Wait()
	})
	return err
}
