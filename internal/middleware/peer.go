// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"net/netip"
)

// ContextKeyPeer is the context key for the connected peer address.
const ContextKeyPeer ContextKey = "peer"

// Peer records the address of the connected peer before proxy headers
// rewrite RemoteAddr. Mount it ahead of chimw.RealIP.
func Peer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		addr, ok := parseRemoteAddr(r.RemoteAddr)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), ContextKeyPeer, addr)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// PeerAddr returns the connected peer address. Without Peer in the chain it
// falls back to the current RemoteAddr.
func PeerAddr(r *http.Request) (netip.Addr, bool) {
	if addr, ok := r.Context().Value(ContextKeyPeer).(netip.Addr); ok {
		return addr, true
	}
	return parseRemoteAddr(r.RemoteAddr)
}

func parseRemoteAddr(remote string) (netip.Addr, bool) {
	if ap, err := netip.ParseAddrPort(remote); err == nil {
		return ap.Addr().Unmap(), true
	}
	if addr, err := netip.ParseAddr(remote); err == nil {
		return addr.Unmap(), true
	}
	return netip.Addr{}, false
}

func trustedPeer(r *http.Request, trusted []netip.Prefix) bool {
	addr, ok := PeerAddr(r)
	if !ok {
		return false
	}
	for _, p := range trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
