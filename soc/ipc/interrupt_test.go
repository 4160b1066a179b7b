package ipc_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/clktmr/ameba/soc/cpu"
	"github.com/clktmr/ameba/soc/ipc"
	"github.com/clktmr/ameba/soc/sim"
)

type received struct {
	ch      ipc.Channel
	status  uint32
	payload uint32
	data    any
}

func TestDispatch(t *testing.T) {
	s := sim.NewSoC(nil)
	rx := s.Port(cpu.KM0)

	var got []received
	h := ipc.HandlerFunc(func(ch ipc.Channel, status uint32, data any) {
		v, err := rx.Receive(ch)
		if err != nil {
			t.Error(err)
		}
		got = append(got, received{ch, status, v, data})
	})
	err := rx.Init(ipc.Table{
		{Handler: h, Data: "zero"},
		{},
		{Handler: h},
		ipc.TableEnd,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := rx.Bind(16, ipc.Entry{Handler: h, Data: 16}); err != nil {
		t.Fatal(err)
	}

	tx := s.Port(cpu.KM4)
	tx.Send(16, ipc.Message{Payload: 0x1600})
	tx.Send(1, ipc.Message{Payload: 0x100}) // unbound
	tx.Send(0, ipc.Message{Payload: 0x000})
	tx.Send(2, ipc.Message{Payload: 0x200})

	if pending := s.IRQ.Pending(cpu.KM4); pending != 0 {
		t.Errorf("sender has pending requests: %#x", pending)
	}
	status := uint32(1<<0 | 1<<1 | 1<<2 | 1<<16)
	if pending := s.IRQ.Pending(cpu.KM0); pending != status {
		t.Fatalf("pending %#x, expected %#x", pending, status)
	}

	if n := s.IRQ.Dispatch(cpu.KM0); n != 3 {
		t.Errorf("dispatched %d handlers, expected 3", n)
	}
	expected := []received{
		{0, status, 0x000, "zero"},
		{2, status, 0x200, nil},
		{16, status, 0x1600, 16},
	}
	if len(got) != len(expected) {
		t.Fatalf("got %v, expected %v", got, expected)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("call %d: got %v, expected %v", i, got[i], expected[i])
		}
	}

	if s.IRQ.Pending(cpu.KM0) != 0 {
		t.Error("requests not acknowledged")
	}
	if n := s.IRQ.Dispatch(cpu.KM0); n != 0 {
		t.Errorf("second dispatch called %d handlers", n)
	}
}

func TestServe(t *testing.T) {
	s := sim.NewSoC(nil)
	results := make(chan uint32, 1)

	rx := s.Port(cpu.KM4)
	rx.Bind(25, ipc.Entry{Handler: ipc.HandlerFunc(func(ch ipc.Channel, _ uint32, _ any) {
		v, _ := rx.Receive(ch)
		results <- v
	})})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- s.IRQ.Serve(ctx, cpu.KM4) }()

	for _, v := range []uint32{1, 2, 3} {
		if err := s.Port(cpu.KM0).Send(25, ipc.Message{Payload: v}); err != nil {
			t.Fatal(err)
		}
		select {
		case got := <-results:
			if got != v {
				t.Errorf("received %d, expected %d", got, v)
			}
		case <-time.After(time.Second):
			t.Fatal("handler not called")
		}
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("serve returned %v", err)
	}
}
