// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Circle Contributors

package httpapi_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/circlehub/circle/internal/account"
	"github.com/circlehub/circle/internal/event"
)

// client talks to a running test server.
type client struct {
	base  string
	token string
}

func (c *client) call(method, path, body string) result {
	GinkgoHelper()
	req, err := http.NewRequest(method, c.base+path, strings.NewReader(body))
	Expect(err).NotTo(HaveOccurred())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := http.DefaultClient.Do(req)
	Expect(err).NotTo(HaveOccurred())
	defer resp.Body.Close()

	out := result{Code: resp.StatusCode}
	Expect(json.NewDecoder(resp.Body).Decode(&out.Body)).To(Succeed())
	return out
}

// streamEvents opens GET /events and forwards decoded payloads until ctx ends.
func (c *client) streamEvents(ctx context.Context) <-chan event.Payload {
	GinkgoHelper()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/events", nil)
	Expect(err).NotTo(HaveOccurred())
	req.Header.Set("Authorization", "Bearer "+c.token)
	resp, err := http.DefaultClient.Do(req)
	Expect(err).NotTo(HaveOccurred())
	Expect(resp.StatusCode).To(Equal(http.StatusOK))
	Expect(resp.Header.Get("Content-Type")).To(Equal("text/event-stream"))

	out := make(chan event.Payload, 16)
	go func() {
		defer GinkgoRecover()
		defer close(out)
		defer resp.Body.Close()
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			data, found := strings.CutPrefix(scanner.Text(), "data: ")
			if !found {
				continue
			}
			var p event.Payload
			if json.Unmarshal([]byte(data), &p) == nil {
				out <- p
			}
		}
	}()
	return out
}

var _ = Describe("Circle API", func() {
	var (
		s      *stack
		server *httptest.Server
	)

	BeforeEach(func() {
		var err error
		s, err = newStack()
		Expect(err).NotTo(HaveOccurred())
		server = httptest.NewServer(s.handler)
		DeferCleanup(func() {
			s.hub.Close()
			server.Close()
		})
	})

	anon := func() *client { return &client{base: server.URL} }

	signupAs := func(name string) (string, *client) {
		GinkgoHelper()
		email := name + "@example.com"
		registered := anon().call(http.MethodPost, "/v1/auth/register", registerBody(email, name, "Str0ng!Pass"))
		Expect(registered.Code).To(Equal(http.StatusOK))
		login := anon().call(http.MethodPost, "/v1/auth/login", loginBody(email, "Str0ng!Pass"))
		Expect(login.Code).To(Equal(http.StatusOK))
		return registered.Body["id"].(string), &client{base: server.URL, token: login.Body["token"].(string)}
	}

	Describe("registration", func() {
		It("rejects a weak password", func() {
			res := anon().call(http.MethodPost, "/v1/auth/register", registerBody("alice@example.com", "alice", "abc"))
			Expect(res.Code).To(Equal(http.StatusBadRequest))
			Expect(res.Body["status"]).To(ContainSubstring("too weak"))
			Expect(s.directory.Len()).To(BeZero())
		})

		It("keeps email and username unique", func() {
			signupAs("alice")
			res := anon().call(http.MethodPost, "/v1/auth/register", registerBody("alice@example.com", "other", "Str0ng!Pass"))
			Expect(res.Code).To(Equal(http.StatusBadRequest))
			res = anon().call(http.MethodPost, "/v1/auth/register", registerBody("other@example.com", "alice", "Str0ng!Pass"))
			Expect(res.Code).To(Equal(http.StatusBadRequest))
			Expect(s.directory.Len()).To(Equal(1))
		})
	})

	Describe("login", func() {
		It("reports a wrong password as invalid credentials, not as not found", func() {
			signupAs("alice")
			res := anon().call(http.MethodPost, "/v1/auth/login", loginBody("alice@example.com", "Wr0ng!Pass"))
			Expect(res.Code).To(Equal(http.StatusBadRequest))
			Expect(res.Body["status"]).To(Equal("the entered credentials are invalid"))
		})
	})

	Describe("friendship", func() {
		It("moves alice and bob from request to mutual friends", func() {
			aliceID, alice := signupAs("alice")
			bobID, bob := signupAs("bob")

			Expect(alice.call(http.MethodPost, "/v1/friends/request", idBody(bobID)).Code).To(Equal(http.StatusOK))

			pending := bob.call(http.MethodGet, "/v1/friends/pending", "")
			Expect(pending.Body["pending"]).To(ConsistOf(aliceID))

			Expect(bob.call(http.MethodPost, "/v1/friends/accept_request", idBody(aliceID)).Code).To(Equal(http.StatusOK))

			Expect(alice.call(http.MethodGet, "/v1/friends/list", "").Body["friends"]).To(Equal([]any{bobID}))
			Expect(bob.call(http.MethodGet, "/v1/friends/list", "").Body["friends"]).To(Equal([]any{aliceID}))
			Expect(bob.call(http.MethodGet, "/v1/friends/pending", "").Body["pending"]).To(BeEmpty())
		})

		It("fails a repeated request with already existing", func() {
			_, alice := signupAs("alice")
			bobID, _ := signupAs("bob")

			Expect(alice.call(http.MethodPost, "/v1/friends/request", idBody(bobID)).Code).To(Equal(http.StatusOK))
			res := alice.call(http.MethodPost, "/v1/friends/request", idBody(bobID))
			Expect(res.Code).To(Equal(http.StatusBadRequest))
			Expect(res.Body["status"]).To(Equal("the Friend Request is already existing"))
		})
	})

	Describe("event stream", func() {
		It("delivers a friend request to the target's live subscriber", func(ctx SpecContext) {
			aliceID, alice := signupAs("alice")
			bobID, bob := signupAs("bob")

			streamCtx, cancel := context.WithCancel(ctx)
			defer cancel()
			events := bob.streamEvents(streamCtx)
			waitForSubscriber(s.hub, mustParse(bobID))

			Expect(alice.call(http.MethodPost, "/v1/friends/request", idBody(bobID)).Code).To(Equal(http.StatusOK))
			Eventually(events).Should(Receive(Equal(event.Payload{Type: event.TypeFriendRequest, Value: aliceID})))
		}, SpecTimeout(10*time.Second))

		It("notifies both sides when a request is accepted", func(ctx SpecContext) {
			aliceID, alice := signupAs("alice")
			bobID, bob := signupAs("bob")

			streamCtx, cancel := context.WithCancel(ctx)
			defer cancel()
			aliceEvents := alice.streamEvents(streamCtx)
			waitForSubscriber(s.hub, mustParse(aliceID))

			Expect(alice.call(http.MethodPost, "/v1/friends/request", idBody(bobID)).Code).To(Equal(http.StatusOK))
			Expect(bob.call(http.MethodPost, "/v1/friends/accept_request", idBody(aliceID)).Code).To(Equal(http.StatusOK))

			Eventually(aliceEvents).Should(Receive(Equal(event.Payload{Type: event.TypeFriendRequestAccepted, Value: bobID})))
		}, SpecTimeout(10*time.Second))

		It("ends the stream when the hub shuts down", func(ctx SpecContext) {
			bobID, bob := signupAs("bob")
			events := bob.streamEvents(ctx)
			waitForSubscriber(s.hub, mustParse(bobID))

			s.hub.Close()
			Eventually(events).Should(BeClosed())
		}, SpecTimeout(10*time.Second))

		It("rejects unauthenticated subscribers", func() {
			res := anon().call(http.MethodGet, "/events", "")
			Expect(res.Code).To(Equal(http.StatusUnauthorized))
		})
	})
})

func mustParse(id string) account.ID {
	GinkgoHelper()
	parsed, err := account.ParseID(id)
	Expect(err).NotTo(HaveOccurred())
	return parsed
}

// waitForSubscriber blocks until the account's channel has a live subscriber.
func waitForSubscriber(hub *event.Hub, id account.ID) {
	GinkgoHelper()
	Eventually(func() int {
		c, err := hub.Channel(id)
		if err != nil {
			return 0
		}
		return c.Subscribers()
	}).Should(BeNumerically(">", 0))
}
