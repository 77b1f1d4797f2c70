package routerapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/h44z/wg-portal-routeros/internal/adapters/wgcontroller"
	"github.com/h44z/wg-portal-routeros/internal/domain"
)

var operationTitles = map[string]string{
	wgcontroller.OpListInterfaces:  "Loading interfaces",
	wgcontroller.OpCreateInterface: "Creating interface",
	wgcontroller.OpUpdateInterface: "Updating interface",
	wgcontroller.OpDeleteInterface: "Deleting interface",
	wgcontroller.OpListPeers:       "Loading peers",
	wgcontroller.OpCreatePeer:      "Creating peer",
	wgcontroller.OpUpdatePeer:      "Updating peer",
	wgcontroller.OpDeletePeer:      "Deleting peer",
	wgcontroller.OpTestConnection:  "Connection test",
}

// notificationFor builds the user facing notification of a call. It is kept short,
// the full error detail only goes to the log.
func notificationFor(operation string, cfg domain.RouterConfig, outcome domain.Outcome) domain.Notification {
	title, ok := operationTitles[operation]
	if !ok {
		title = operation
	}

	n := domain.Notification{
		Category: outcome.Category,
		Level:    domain.NotificationLevelError,
	}

	switch outcome.Category {
	case domain.OutcomeSuccess:
		n.Level = domain.NotificationLevelInfo
		n.Title = title + " succeeded"
		if operation == wgcontroller.OpTestConnection {
			n.Message = fmt.Sprintf("Connected to router %s.", cfg.Host())
		}
		return n
	case domain.OutcomeConfigIncomplete:
		n.Level = domain.NotificationLevelWarning
		n.Message = "The router connection is not configured."
		if missing := cfg.MissingFields(); len(missing) > 0 {
			n.Message = fmt.Sprintf("The router connection is not configured, missing: %s.",
				strings.Join(missing, ", "))
		}
	case domain.OutcomeHttpError:
		n.Message = httpErrorGuidance(outcome)
	case domain.OutcomeCorsBlocked:
		n.Message = "The router does not allow cross-origin requests. Enable relay mode to send requests " +
			"through the portal server."
	case domain.OutcomeMixedContent:
		n.Message = "The portal is served over HTTPS but the router is configured for HTTP. Enable HTTPS " +
			"on the router or use relay mode."
	case domain.OutcomeNetworkUnreachable:
		n.Message = fmt.Sprintf("The router %s could not be reached. Check address, port and the HTTPS setting.",
			cfg.Host())
	case domain.OutcomeRelayFailure:
		n.Message = "The relay endpoint failed before the router could be contacted. Check the relay URL " +
			"or disable relay mode."
	case domain.OutcomeParseError:
		n.Message = "The router sent a response that could not be read."
	default:
		n.Message = "The router request failed for an unknown reason, see the log for details."
	}
	n.Title = title + " failed"

	return n
}

func httpErrorGuidance(outcome domain.Outcome) string {
	switch outcome.Status {
	case http.StatusUnauthorized:
		return "The router rejected the credentials. Check username and password."
	case http.StatusForbidden:
		return "The router user lacks the permissions for this operation (api, read and write policies)."
	case http.StatusNotFound:
		return "The requested object does not exist on the router, or the REST API is not available."
	}
	if outcome.Message != "" {
		return fmt.Sprintf("The router answered %d %s: %s", outcome.Status, outcome.StatusText, outcome.Message)
	}
	return fmt.Sprintf("The router answered %d %s.", outcome.Status, outcome.StatusText)
}
