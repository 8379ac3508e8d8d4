package types

import "errors"

// Sentinel errors returned by this module. Use errors.Is to discriminate.
var (
	// ErrConnect indicates a connect attempt to the broker failed.
	ErrConnect = errors.New("connector: connect failed")

	// ErrNotConnected indicates an operation was attempted while the
	// session was not connected to the broker.
	ErrNotConnected = errors.New("connector: not connected")

	// ErrHubInitialization indicates hub creation or verification failed.
	ErrHubInitialization = errors.New("connector: hub initialization failed")

	// ErrHubNotInitialized indicates an operation required an
	// initialized hub but none was present.
	ErrHubNotInitialized = errors.New("connector: hub not initialized")

	// ErrHubNotFound indicates the configured hub id does not exist
	// on the platform.
	ErrHubNotFound = errors.New("connector: hub not found")

	// ErrHubSync indicates a hub synchronization request failed.
	ErrHubSync = errors.New("connector: hub sync failed")

	// ErrHubSyncDevice indicates the platform rejected the device set
	// during a hub sync.
	ErrHubSyncDevice = errors.New("connector: hub sync rejected device set")

	// ErrDeviceAdd indicates a device could not be registered with
	// the platform.
	ErrDeviceAdd = errors.New("connector: device add failed")

	// ErrDeviceUpdate indicates a device could not be updated on the
	// platform.
	ErrDeviceUpdate = errors.New("connector: device update failed")

	// ErrDeviceDelete indicates a device could not be removed from
	// the platform.
	ErrDeviceDelete = errors.New("connector: device delete failed")

	// ErrDeviceNotFound indicates the platform has no record of the
	// referenced device.
	ErrDeviceNotFound = errors.New("connector: device not found")

	// ErrDeviceIDPrefix indicates the device id prefix could not be
	// derived or parsed.
	ErrDeviceIDPrefix = errors.New("connector: device id prefix error")

	// ErrDeviceConnect indicates subscribing a device's command topic
	// failed.
	ErrDeviceConnect = errors.New("connector: device connect failed")

	// ErrDeviceConnectNotAllowed indicates the broker refused the
	// subscribe request (granted QoS 128).
	ErrDeviceConnectNotAllowed = errors.New("connector: device connect not allowed")

	// ErrDeviceDisconnect indicates unsubscribing a device's command
	// topic failed.
	ErrDeviceDisconnect = errors.New("connector: device disconnect failed")

	// ErrSend indicates a generic publish failure.
	ErrSend = errors.New("connector: send failed")

	// ErrSendEvent indicates an event publish failed.
	ErrSendEvent = errors.New("connector: send event failed")

	// ErrSendResponse indicates a command response publish failed.
	ErrSendResponse = errors.New("connector: send response failed")

	// ErrCommandQueueEmpty indicates no command was available within
	// the requested bound.
	ErrCommandQueueEmpty = errors.New("connector: command queue empty")

	// ErrFutureNotDone indicates Future.Result was called before the
	// worker signaled completion.
	ErrFutureNotDone = errors.New("connector: future not done")

	// ErrNoToken indicates the configured AuthProvider could not
	// produce a bearer token.
	ErrNoToken = errors.New("connector: no access token")

	// ErrRemoteIDAlreadySet indicates a second attempt to assign a
	// device's platform-issued remote id.
	ErrRemoteIDAlreadySet = errors.New("connector: remote id already set")

	// ErrAlreadyConnected indicates a connect attempt while already
	// connected.
	ErrAlreadyConnected = errors.New("connector: already connected")
)
