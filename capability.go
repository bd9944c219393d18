package bootimg

// Capability is a set of optional fields a variant serializes.
type Capability uint64

const (
	SUPPORTS_KERNEL_ADDRESS Capability = 1 << iota
	SUPPORTS_RAMDISK_ADDRESS
	SUPPORTS_SECOND_ADDRESS
	SUPPORTS_TAGS_ADDRESS
	SUPPORTS_IPL_ADDRESS
	SUPPORTS_RPM_ADDRESS
	SUPPORTS_APPSBL_ADDRESS
	SUPPORTS_ENTRYPOINT
	SUPPORTS_PAGE_SIZE
	SUPPORTS_BOARD_NAME
	SUPPORTS_CMDLINE
	SUPPORTS_KERNEL_IMAGE
	SUPPORTS_RAMDISK_IMAGE
	SUPPORTS_SECOND_IMAGE
	SUPPORTS_DT_IMAGE
	SUPPORTS_ABOOT_IMAGE
	SUPPORTS_KERNEL_MTKHDR
	SUPPORTS_RAMDISK_MTKHDR
	SUPPORTS_IPL_IMAGE
	SUPPORTS_RPM_IMAGE
	SUPPORTS_APPSBL_IMAGE
	SUPPORTS_SONY_SIN_IMAGE
	SUPPORTS_SONY_SIN_HEADER
)

var capabilityNames = []struct {
	c    Capability
	name string
}{
	{SUPPORTS_KERNEL_ADDRESS, "kernel_address"},
	{SUPPORTS_RAMDISK_ADDRESS, "ramdisk_address"},
	{SUPPORTS_SECOND_ADDRESS, "second_address"},
	{SUPPORTS_TAGS_ADDRESS, "tags_address"},
	{SUPPORTS_IPL_ADDRESS, "ipl_address"},
	{SUPPORTS_RPM_ADDRESS, "rpm_address"},
	{SUPPORTS_APPSBL_ADDRESS, "appsbl_address"},
	{SUPPORTS_ENTRYPOINT, "entrypoint"},
	{SUPPORTS_PAGE_SIZE, "page_size"},
	{SUPPORTS_BOARD_NAME, "board_name"},
	{SUPPORTS_CMDLINE, "cmdline"},
	{SUPPORTS_KERNEL_IMAGE, "kernel_image"},
	{SUPPORTS_RAMDISK_IMAGE, "ramdisk_image"},
	{SUPPORTS_SECOND_IMAGE, "second_image"},
	{SUPPORTS_DT_IMAGE, "dt_image"},
	{SUPPORTS_ABOOT_IMAGE, "aboot_image"},
	{SUPPORTS_KERNEL_MTKHDR, "kernel_mtkhdr"},
	{SUPPORTS_RAMDISK_MTKHDR, "ramdisk_mtkhdr"},
	{SUPPORTS_IPL_IMAGE, "ipl_image"},
	{SUPPORTS_RPM_IMAGE, "rpm_image"},
	{SUPPORTS_APPSBL_IMAGE, "appsbl_image"},
	{SUPPORTS_SONY_SIN_IMAGE, "sin_image"},
	{SUPPORTS_SONY_SIN_HEADER, "sin_header"},
}

const androidCapabilities = SUPPORTS_KERNEL_ADDRESS |
	SUPPORTS_RAMDISK_ADDRESS |
	SUPPORTS_SECOND_ADDRESS |
	SUPPORTS_TAGS_ADDRESS |
	SUPPORTS_PAGE_SIZE |
	SUPPORTS_BOARD_NAME |
	SUPPORTS_CMDLINE |
	SUPPORTS_KERNEL_IMAGE |
	SUPPORTS_RAMDISK_IMAGE |
	SUPPORTS_SECOND_IMAGE |
	SUPPORTS_DT_IMAGE

// CapabilityMask returns the fields variant v round-trips.
func CapabilityMask(v Variant) Capability {
	switch v {
	case ANDROID, BUMP:
		return androidCapabilities
	case LOKI:
		return androidCapabilities&^SUPPORTS_SECOND_IMAGE | SUPPORTS_ABOOT_IMAGE
	case MTK:
		return androidCapabilities | SUPPORTS_KERNEL_MTKHDR | SUPPORTS_RAMDISK_MTKHDR
	case SONY_ELF:
		return SUPPORTS_KERNEL_ADDRESS |
			SUPPORTS_RAMDISK_ADDRESS |
			SUPPORTS_IPL_ADDRESS |
			SUPPORTS_RPM_ADDRESS |
			SUPPORTS_APPSBL_ADDRESS |
			SUPPORTS_ENTRYPOINT |
			SUPPORTS_CMDLINE |
			SUPPORTS_KERNEL_IMAGE |
			SUPPORTS_RAMDISK_IMAGE |
			SUPPORTS_IPL_IMAGE |
			SUPPORTS_RPM_IMAGE |
			SUPPORTS_APPSBL_IMAGE |
			SUPPORTS_SONY_SIN_IMAGE |
			SUPPORTS_SONY_SIN_HEADER
	default:
		return 0
	}
}

// Has reports whether every bit of o is set in c.
func (c Capability) Has(o Capability) bool {
	return c&o == o
}

// Names lists the set capabilities in declaration order.
func (c Capability) Names() []string {
	var names []string
	for _, n := range capabilityNames {
		if c&n.c != 0 {
			names = append(names, n.name)
		}
	}
	return names
}
