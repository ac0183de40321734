package events

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/poinku/internal/models"
	"github.com/mmynk/poinku/internal/tenant"
)

func testHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()

	auth := func(r *http.Request) (tenant.Actor, error) {
		as := r.URL.Query().Get("as")
		if id, ok := strings.CutPrefix(as, "member:"); ok {
			return tenant.Actor{Subject: id, Kind: tenant.KindMember, StoreID: "s1"}, nil
		}
		switch as {
		case "admin":
			return tenant.Actor{Subject: "a", Kind: tenant.KindStaff, Role: models.RoleAdmin}, nil
		case "":
			return tenant.Actor{}, errors.New("no session")
		default:
			return tenant.Actor{Subject: "c", Kind: tenant.KindStaff, Role: models.RoleStaff, StoreID: as}, nil
		}
	}

	hub := NewHub(auth, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(hub)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, as string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?as=" + as
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestHubRoutesByStore(t *testing.T) {
	hub, srv := testHub(t)

	s1 := dial(t, srv, "s1")
	s2 := dial(t, srv, "s2")
	admin := dial(t, srv, "admin")

	require.Eventually(t, func() bool { return hub.ClientCount() == 3 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish(Event{Type: LedgerEarned, StoreID: "s1", MemberID: "m1", Data: BalanceChange{Points: 5, Balance: 5}})
	hub.Publish(Event{Type: VoucherRedeemed, StoreID: "s2", Data: VoucherChange{Code: "VOU-ABC234", Status: "used"}})

	ev := readEvent(t, s1)
	assert.Equal(t, LedgerEarned, ev.Type)
	assert.Equal(t, "m1", ev.MemberID)

	// s2 never sees the s1 event
	ev = readEvent(t, s2)
	assert.Equal(t, VoucherRedeemed, ev.Type)

	assert.Equal(t, LedgerEarned, readEvent(t, admin).Type)
	assert.Equal(t, VoucherRedeemed, readEvent(t, admin).Type)
}

func TestHubRejectsMissingSession(t *testing.T) {
	_, srv := testHub(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHubUnregistersOnClose(t *testing.T) {
	hub, srv := testHub(t)

	conn := dial(t, srv, "s1")
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHubMemberSeesOnlyOwnEvents(t *testing.T) {
	hub, srv := testHub(t)

	member := dial(t, srv, "member:mA")
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	// A self-claim by another member carries no store, and an earning by
	// another member happens at the member's own registration store.
	hub.Publish(Event{Type: VoucherIssued, MemberID: "mB", Data: VoucherChange{Code: "VOU-SECRET", Status: "active"}})
	hub.Publish(Event{Type: LedgerEarned, StoreID: "s1", MemberID: "mC", Data: BalanceChange{Points: 9, Balance: 999}})
	hub.Publish(Event{Type: VoucherExpired, StoreID: "s1"})
	hub.Publish(Event{Type: LedgerEarned, StoreID: "s2", MemberID: "mA", Data: BalanceChange{Points: 1, Balance: 1}})

	ev := readEvent(t, member)
	assert.Equal(t, LedgerEarned, ev.Type)
	assert.Equal(t, "mA", ev.MemberID)
}
