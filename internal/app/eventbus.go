package app

// region router-events

// TopicNotification is published once per router call attempt, the payload is a domain.Notification.
const TopicNotification = "router:notification"

// TopicRouterCallCompleted is published after every router call, the payload is a domain.CallEvent.
const TopicRouterCallCompleted = "router:call:completed"

// TopicConnectionStateChanged is published when a connection test flips the connection state,
// the payload is a domain.ConnectionState.
const TopicConnectionStateChanged = "router:connection:changed"

// endregion router-events

// region settings-events

// TopicRouterSettingsUpdated is published after the router connection settings were stored,
// the payload is the redacted domain.RouterConfig.
const TopicRouterSettingsUpdated = "settings:router:updated"

// TopicWireGuardDefaultsUpdated is published after the WireGuard defaults were stored.
const TopicWireGuardDefaultsUpdated = "settings:wireguard:updated"

// endregion settings-events
