package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

// memberAPI is the part of the discord session the directory needs
type memberAPI interface {
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
}

type memberKey struct {
	guildID int64
	userID  int64
}

type cachedMember struct {
	member  *discordgo.Member
	expires time.Time
}

// MemberDirectory looks up guild members and manages their roles.
// It implements the RoleManager the economy uses for role rewards.
type MemberDirectory struct {
	api      memberAPI
	cacheTTL time.Duration

	mu    sync.RWMutex
	cache map[memberKey]cachedMember

	maxRetries uint64
	retryDelay time.Duration
}

// NewMemberDirectory creates a directory backed by the discord session
func NewMemberDirectory(api memberAPI) *MemberDirectory {
	return &MemberDirectory{
		api:        api,
		cacheTTL:   time.Minute,
		cache:      make(map[memberKey]cachedMember),
		maxRetries: 3,
		retryDelay: time.Second,
	}
}

// Member returns the guild member, nil when they are not in the guild
func (d *MemberDirectory) Member(ctx context.Context, guildID, userID int64) (*discordgo.Member, error) {
	key := memberKey{guildID: guildID, userID: userID}

	d.mu.RLock()
	cached, ok := d.cache[key]
	d.mu.RUnlock()
	if ok && time.Now().Before(cached.expires) {
		return cached.member, nil
	}

	var member *discordgo.Member
	err := d.withRetry(ctx, func() error {
		var err error
		member, err = d.api.GuildMember(strconv.FormatInt(guildID, 10), strconv.FormatInt(userID, 10), discordgo.WithContext(ctx))
		return err
	})
	if isUnknownMember(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch member %d of guild %d: %w", userID, guildID, err)
	}

	d.mu.Lock()
	d.cache[key] = cachedMember{member: member, expires: time.Now().Add(d.cacheTTL)}
	d.mu.Unlock()
	return member, nil
}

// DisplayName returns the nickname, global name or username of a member.
// Members who left fall back to their id.
func (d *MemberDirectory) DisplayName(ctx context.Context, guildID, userID int64) string {
	member, err := d.Member(ctx, guildID, userID)
	if err != nil {
		log.WithError(err).WithField("userID", userID).Debug("Failed to resolve display name")
	}
	if member != nil {
		if member.Nick != "" {
			return member.Nick
		}
		if member.User != nil {
			if member.User.GlobalName != "" {
				return member.User.GlobalName
			}
			return member.User.Username
		}
	}
	return fmt.Sprintf("User%d", userID)
}

func (d *MemberDirectory) HasRole(ctx context.Context, guildID, userID, roleID int64) (bool, error) {
	member, err := d.Member(ctx, guildID, userID)
	if err != nil {
		return false, err
	}
	if member == nil {
		return false, nil
	}
	return slices.Contains(member.Roles, strconv.FormatInt(roleID, 10)), nil
}

func (d *MemberDirectory) AddRole(ctx context.Context, guildID, userID, roleID int64) error {
	defer d.Invalidate(guildID, userID)
	err := d.withRetry(ctx, func() error {
		return d.api.GuildMemberRoleAdd(strconv.FormatInt(guildID, 10), strconv.FormatInt(userID, 10), strconv.FormatInt(roleID, 10), discordgo.WithContext(ctx))
	})
	if err != nil {
		return fmt.Errorf("failed to add role %d to %d: %w", roleID, userID, err)
	}
	log.WithFields(log.Fields{
		"guildID": guildID,
		"userID":  userID,
		"roleID":  roleID,
	}).Info("Role added")
	return nil
}

// RemoveRole is a no-op for members who left the guild
func (d *MemberDirectory) RemoveRole(ctx context.Context, guildID, userID, roleID int64) error {
	defer d.Invalidate(guildID, userID)
	err := d.withRetry(ctx, func() error {
		return d.api.GuildMemberRoleRemove(strconv.FormatInt(guildID, 10), strconv.FormatInt(userID, 10), strconv.FormatInt(roleID, 10), discordgo.WithContext(ctx))
	})
	if isUnknownMember(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to remove role %d from %d: %w", roleID, userID, err)
	}
	log.WithFields(log.Fields{
		"guildID": guildID,
		"userID":  userID,
		"roleID":  roleID,
	}).Info("Role removed")
	return nil
}

// InvalidateGuild drops every cached member of a guild
func (d *MemberDirectory) InvalidateGuild(guildID int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key := range d.cache {
		if key.guildID == guildID {
			delete(d.cache, key)
		}
	}
}

// Invalidate drops one cached member
func (d *MemberDirectory) Invalidate(guildID, userID int64) {
	d.mu.Lock()
	delete(d.cache, memberKey{guildID: guildID, userID: userID})
	d.mu.Unlock()
}

// withRetry retries rate limited calls with exponential backoff
func (d *MemberDirectory) withRetry(ctx context.Context, call func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = d.retryDelay
	retrying := backoff.WithContext(backoff.WithMaxRetries(policy, d.maxRetries), ctx)

	return backoff.RetryNotify(func() error {
		err := call()
		if err != nil && !isRateLimitError(err) {
			return backoff.Permanent(err)
		}
		return err
	}, retrying, func(err error, wait time.Duration) {
		log.Warnf("Hit rate limit, waiting %v before retry", wait)
	})
}

// isRateLimitError checks if an error is a rate limit error
func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	var rateLimited *discordgo.RateLimitError
	if errors.As(err, &rateLimited) {
		return true
	}
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusTooManyRequests {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "429") || strings.Contains(errStr, "rate limit")
}

func isUnknownMember(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeUnknownMember {
		return true
	}
	return restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}
