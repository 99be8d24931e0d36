package flagstore

import "golang.org/x/sys/unix"

// DefaultAttribute is the extended attribute the Dropbox client reads.
const DefaultAttribute = "com.dropbox.ignored"

// errNoAttr is returned by the kernel for a missing attribute.
const errNoAttr = unix.ENOATTR
