package redfish

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
)

// MediaVariant tags which virtual-media implementation a BMC exposes.
type MediaVariant string

const (
	// VariantStandard is the DMTF VirtualMedia collection with
	// InsertMedia/EjectMedia actions.
	VariantStandard MediaVariant = "Standard"
	// VariantProprietary is the vendor IsoConfig mount interface found
	// under Managers/1/VM1/CfgCD on some firmware.
	VariantProprietary MediaVariant = "Proprietary"
)

// MediaHandle locates the virtual-media capability discovered on a BMC.
// Capability location shifts across firmware versions, so handles are
// rediscovered on every invocation and never cached.
type MediaHandle struct {
	// Path is the media resource (Standard) or the mount action target
	// (Proprietary).
	Path    string
	Variant MediaVariant
	// UnmountPath is the eject/unmount action target.
	UnmountPath string
}

const (
	virtualMediaCollection = managerPath + "/VirtualMedia"
	cfgCDPath              = managerPath + "/VM1/CfgCD"

	insertMediaAction = "/Actions/VirtualMedia.InsertMedia"
	ejectMediaAction  = "/Actions/VirtualMedia.EjectMedia"
	isoMountKey       = "#IsoConfig.Mount"
	isoUnmountKey     = "#IsoConfig.UnMount"
)

// standardMount is the DMTF InsertMedia payload. It doubles as the fallback
// payload shape for the proprietary target.
type standardMount struct {
	Image          string `json:"Image"`
	Inserted       bool   `json:"Inserted"`
	WriteProtected bool   `json:"WriteProtected"`
}

// isoMount is the proprietary IsoConfig.Mount payload: the image URL split
// into its host and path, credentials always empty.
type isoMount struct {
	Host     string `json:"Host"`
	Path     string `json:"Path"`
	Protocol string `json:"Protocol"`
	Username string `json:"Username"`
	Password string `json:"Password"`
}

// DiscoverVirtualMedia probes the standards-compliant virtual-media
// collection first and the proprietary CfgCD resource second. It returns a
// handle for the first variant that responds, and a discovery failure when
// neither does; it never guesses a path.
func (c *Client) DiscoverVirtualMedia(ctx context.Context) (*MediaHandle, error) {
	h, stdErr := c.discoverStandard(ctx)
	if stdErr == nil {
		return h, nil
	}
	log.Debug().Str("host", c.host).Err(stdErr).Msg("standard virtual media not usable, probing proprietary path")

	h, propErr := c.discoverProprietary(ctx)
	if propErr == nil {
		return h, nil
	}

	return nil, &Error{
		Kind:    KindDiscovery,
		Message: fmt.Sprintf("no virtual media capability: standard: %v; proprietary: %v", stdErr, propErr),
	}
}

// discoverStandard walks the VirtualMedia collection for a CD/DVD-capable
// member.
func (c *Client) discoverStandard(ctx context.Context) (*MediaHandle, error) {
	paths, err := c.members(ctx, virtualMediaCollection)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, errors.New("virtual media collection has no members")
	}

	for _, p := range paths {
		resp, err := c.Get(ctx, p)
		if err != nil {
			return nil, err
		}
		var m struct {
			ID         string   `json:"Id"`
			Name       string   `json:"Name"`
			MediaTypes []string `json:"MediaTypes"`
		}
		if err := resp.Decode(&m); err != nil {
			return nil, err
		}
		if mediaSupportsCD(m.MediaTypes) || hasCDMarker(m.ID) || hasCDMarker(m.Name) {
			return &MediaHandle{
				Path:        p,
				Variant:     VariantStandard,
				UnmountPath: p + ejectMediaAction,
			}, nil
		}
	}
	return nil, errors.New("no CD/DVD capable virtual media member")
}

// discoverProprietary probes the vendor CfgCD resource for an
// IsoConfig.Mount action.
func (c *Client) discoverProprietary(ctx context.Context) (*MediaHandle, error) {
	resp, err := c.Get(ctx, cfgCDPath)
	if err != nil {
		return nil, err
	}
	var cfg struct {
		Actions map[string]struct {
			Target string `json:"target"`
		} `json:"Actions"`
	}
	if err := resp.Decode(&cfg); err != nil {
		return nil, err
	}

	mount, ok := cfg.Actions[isoMountKey]
	if !ok || mount.Target == "" {
		return nil, errors.New("CfgCD resource exposes no IsoConfig.Mount action")
	}
	h := &MediaHandle{Path: mount.Target, Variant: VariantProprietary}
	if unmount, ok := cfg.Actions[isoUnmountKey]; ok && unmount.Target != "" {
		h.UnmountPath = unmount.Target
	} else {
		h.UnmountPath = strings.Replace(mount.Target, "IsoConfig.Mount", "IsoConfig.UnMount", 1)
	}
	return h, nil
}

func mediaSupportsCD(types []string) bool {
	for _, t := range types {
		switch strings.ToUpper(t) {
		case "CD", "DVD":
			return true
		}
	}
	return false
}

func hasCDMarker(s string) bool {
	return strings.Contains(strings.ToLower(s), "cd")
}

// MountISO attaches a network-hosted ISO image through the discovered
// capability. The Standard variant issues a single InsertMedia action. The
// Proprietary variant first detaches whatever might be mounted (a failure
// there only means nothing was mounted and is ignored), then mounts with the
// host/path payload, then falls back once to the standard payload shape
// against the same target before giving up.
func (c *Client) MountISO(ctx context.Context, h *MediaHandle, imageURL string) error {
	switch h.Variant {
	case VariantStandard:
		body := standardMount{Image: imageURL, Inserted: true, WriteProtected: true}
		if _, err := c.Post(ctx, h.Path+insertMediaAction, body); err != nil {
			return fmt.Errorf("inserting media: %w", err)
		}
		return nil

	case VariantProprietary:
		if _, err := c.Post(ctx, h.UnmountPath, nil); err != nil {
			log.Debug().Str("host", c.host).Err(err).Msg("pre-mount unmount failed (nothing mounted)")
		}

		u, err := url.Parse(imageURL)
		if err != nil || u.Host == "" {
			return fmt.Errorf("invalid image URL %q", imageURL)
		}
		body := isoMount{
			Host:     u.Hostname(),
			Path:     u.Path,
			Protocol: "HTTP",
		}
		_, mountErr := c.Post(ctx, h.Path, body)
		if mountErr == nil {
			return nil
		}

		// Some firmware revisions only accept the standard payload shape
		// on the proprietary target.
		fallback := standardMount{Image: imageURL, Inserted: true, WriteProtected: true}
		if _, err := c.Post(ctx, h.Path, fallback); err != nil {
			return fmt.Errorf("proprietary mount failed: %w (fallback payload also rejected: %v)", mountErr, err)
		}
		return nil

	default:
		return fmt.Errorf("unknown media variant %q", h.Variant)
	}
}

// UnmountISO detaches the currently mounted image. On the proprietary
// variant a client-side rejection means nothing was mounted, which is not an
// error.
func (c *Client) UnmountISO(ctx context.Context, h *MediaHandle) error {
	body := any(nil)
	if h.Variant == VariantStandard {
		body = struct{}{}
	}
	if _, err := c.Post(ctx, h.UnmountPath, body); err != nil {
		var rerr *Error
		if h.Variant == VariantProprietary && errors.As(err, &rerr) && rerr.Kind == KindClient {
			return nil
		}
		return fmt.Errorf("unmounting media: %w", err)
	}
	return nil
}

// bootOverride is the one-time boot-source override written before a
// restart.
type bootOverride struct {
	Boot struct {
		BootSourceOverrideEnabled string `json:"BootSourceOverrideEnabled"`
		BootSourceOverrideTarget  string `json:"BootSourceOverrideTarget"`
	} `json:"Boot"`
}

// BootToCD sets a one-time CD boot override and forces a restart. This is a
// separate step from mounting: callers report its failure distinctly so a
// successful mount is never masked by a failed override or restart.
func (c *Client) BootToCD(ctx context.Context) error {
	var body bootOverride
	body.Boot.BootSourceOverrideEnabled = "Once"
	body.Boot.BootSourceOverrideTarget = "Cd"

	if _, err := c.Patch(ctx, systemPath, body); err != nil {
		return fmt.Errorf("setting CD boot override: %w", err)
	}
	if err := c.Reset(ctx, ResetForceRestart); err != nil {
		return fmt.Errorf("boot override set but restart failed: %w", err)
	}
	return nil
}
