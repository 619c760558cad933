package resolve

import "strings"

// jdkTypes lists the platform types that resolve without being part of the
// scanned sources, keyed by package.
var jdkTypes = map[string][]string{
	// Every public top-level type of java.lang, so a simple name that is not
	// declared in scope never falls back to the unit's own package.
	"java.lang": {
		// interfaces
		"Appendable", "AutoCloseable", "CharSequence", "Cloneable", "Comparable", "Iterable",
		"ProcessHandle", "Readable", "Runnable",
		// annotations
		"Deprecated", "FunctionalInterface", "Override", "SafeVarargs", "SuppressWarnings",
		// classes
		"Boolean", "Byte", "Character", "Class", "ClassLoader", "ClassValue", "Compiler", "Double", "Enum",
		"Float", "InheritableThreadLocal", "Integer", "Long", "Math", "Module", "ModuleLayer", "Number",
		"Object", "Package", "Process", "ProcessBuilder", "Record", "Runtime", "RuntimePermission",
		"SecurityManager", "Short", "StackTraceElement", "StackWalker", "StrictMath", "String",
		"StringBuffer", "StringBuilder", "System", "Thread", "ThreadGroup", "ThreadLocal", "Throwable",
		"Void",
		// exceptions
		"ArithmeticException", "ArrayIndexOutOfBoundsException", "ArrayStoreException",
		"ClassCastException", "ClassNotFoundException", "CloneNotSupportedException",
		"EnumConstantNotPresentException", "Exception", "IllegalAccessException",
		"IllegalArgumentException", "IllegalCallerException", "IllegalMonitorStateException",
		"IllegalStateException", "IllegalThreadStateException", "IndexOutOfBoundsException",
		"InstantiationException", "InterruptedException", "LayerInstantiationException", "MatchException",
		"NegativeArraySizeException", "NoSuchFieldException", "NoSuchMethodException",
		"NullPointerException", "NumberFormatException", "ReflectiveOperationException",
		"RuntimeException", "SecurityException", "StringIndexOutOfBoundsException",
		"TypeNotPresentException", "UnsupportedOperationException", "WrongThreadException",
		// errors
		"AbstractMethodError", "AssertionError", "BootstrapMethodError", "ClassCircularityError",
		"ClassFormatError", "Error", "ExceptionInInitializerError", "IllegalAccessError",
		"IncompatibleClassChangeError", "InstantiationError", "InternalError", "LinkageError",
		"NoClassDefFoundError", "NoSuchFieldError", "NoSuchMethodError", "OutOfMemoryError",
		"StackOverflowError", "ThreadDeath", "UnknownError", "UnsatisfiedLinkError",
		"UnsupportedClassVersionError", "VerifyError", "VirtualMachineError",
	},
	"java.io": {
		"BufferedInputStream", "BufferedOutputStream", "BufferedReader", "BufferedWriter",
		"ByteArrayInputStream", "ByteArrayOutputStream", "Closeable", "DataInput", "DataInputStream",
		"DataOutput", "DataOutputStream", "EOFException", "Externalizable", "File", "FileInputStream",
		"FileNotFoundException", "FileOutputStream", "FileReader", "FileWriter", "Flushable",
		"IOException", "InputStream", "InputStreamReader", "InvalidClassException", "InvalidObjectException",
		"NotSerializableException", "ObjectInput", "ObjectInputStream", "ObjectOutput",
		"ObjectOutputStream", "ObjectStreamException", "ObjectStreamField", "OutputStream",
		"OutputStreamWriter", "PrintStream", "PrintWriter", "Reader", "Serializable", "StringReader",
		"StringWriter", "UncheckedIOException", "UnsupportedEncodingException", "Writer",
	},
	"java.util": {
		"AbstractCollection", "AbstractList", "AbstractMap", "AbstractQueue", "AbstractSet", "ArrayDeque",
		"ArrayList", "Arrays", "Base64", "BitSet", "Calendar", "Collection", "Collections", "Comparator",
		"ConcurrentModificationException", "Currency", "Date", "Deque", "Dictionary", "EnumMap", "EnumSet",
		"EventListener", "EventObject", "GregorianCalendar", "HashMap", "HashSet", "Hashtable",
		"IdentityHashMap", "Iterator", "LinkedHashMap", "LinkedHashSet", "LinkedList", "List",
		"ListIterator", "Locale", "Map", "MissingResourceException", "NavigableMap", "NavigableSet",
		"NoSuchElementException", "Objects", "Observable", "Observer", "Optional", "OptionalDouble",
		"OptionalInt", "OptionalLong", "PriorityQueue", "Properties", "Queue", "Random", "ResourceBundle",
		"Scanner", "Set", "SortedMap", "SortedSet", "Spliterator", "Stack", "StringJoiner", "TimeZone",
		"Timer", "TimerTask", "TreeMap", "TreeSet", "UUID", "Vector", "WeakHashMap",
	},
	"java.util.concurrent": {
		"BlockingQueue", "Callable", "CompletableFuture", "CompletionStage", "ConcurrentHashMap",
		"ConcurrentLinkedQueue", "ConcurrentMap", "ConcurrentSkipListMap", "CopyOnWriteArrayList",
		"CopyOnWriteArraySet", "CountDownLatch", "ExecutionException", "Executor", "ExecutorService",
		"Executors", "Future", "LinkedBlockingQueue", "ScheduledExecutorService", "Semaphore",
		"ThreadLocalRandom", "TimeUnit", "TimeoutException",
	},
	"java.util.concurrent.atomic": {
		"AtomicBoolean", "AtomicInteger", "AtomicIntegerArray", "AtomicLong", "AtomicLongArray",
		"AtomicReference", "LongAdder",
	},
	"java.util.concurrent.locks": {
		"Lock", "ReadWriteLock", "ReentrantLock", "ReentrantReadWriteLock",
	},
	"java.util.function": {
		"BiConsumer", "BiFunction", "BiPredicate", "BinaryOperator", "BooleanSupplier", "Consumer",
		"Function", "IntFunction", "Predicate", "Supplier", "ToIntFunction", "UnaryOperator",
	},
	"java.util.regex": {"Matcher", "Pattern", "PatternSyntaxException"},
	"java.util.stream": {"Collectors", "IntStream", "Stream"},
	"java.math":        {"BigDecimal", "BigInteger", "MathContext", "RoundingMode"},
	"java.net": {
		"HttpURLConnection", "Inet4Address", "Inet6Address", "InetAddress", "InetSocketAddress",
		"MalformedURLException", "Socket", "URI", "URISyntaxException", "URL",
	},
	"java.nio.file": {"Files", "Path", "Paths"},
	"java.nio.charset": {"Charset", "StandardCharsets"},
	"java.text": {
		"DateFormat", "DecimalFormat", "Format", "MessageFormat", "NumberFormat", "ParseException",
		"SimpleDateFormat",
	},
	"java.time": {
		"Clock", "DayOfWeek", "Duration", "Instant", "LocalDate", "LocalDateTime", "LocalTime", "Month",
		"MonthDay", "OffsetDateTime", "OffsetTime", "Period", "Year", "YearMonth", "ZoneId", "ZoneOffset",
		"ZonedDateTime",
	},
	"java.security": {"Principal", "PrivilegedAction"},
	"java.sql":      {"Connection", "Date", "ResultSet", "SQLException", "Statement", "Time", "Timestamp"},
}

// serializableJDK lists platform types known to implement java.io.Serializable
// (directly or through a supertype). Throwables are matched by suffix.
var serializableJDK = map[string]bool{
	"java.io.Serializable":   true,
	"java.io.Externalizable": true,

	"java.lang.Boolean": true, "java.lang.Byte": true, "java.lang.Character": true,
	"java.lang.Double": true, "java.lang.Enum": true, "java.lang.Float": true, "java.lang.Integer": true,
	"java.lang.Long": true, "java.lang.Number": true, "java.lang.Short": true, "java.lang.StackTraceElement": true,
	"java.lang.String": true, "java.lang.StringBuffer": true, "java.lang.StringBuilder": true,
	"java.lang.Throwable": true, "java.lang.ThreadDeath": true, "java.lang.RuntimePermission": true,

	"java.io.File": true,

	"java.math.BigDecimal": true, "java.math.BigInteger": true, "java.math.MathContext": true,
	"java.math.RoundingMode": true,

	"java.net.Inet4Address": true, "java.net.Inet6Address": true, "java.net.InetAddress": true,
	"java.net.InetSocketAddress": true, "java.net.URI": true, "java.net.URL": true,

	"java.text.DateFormat": true, "java.text.DecimalFormat": true, "java.text.Format": true,
	"java.text.MessageFormat": true, "java.text.NumberFormat": true, "java.text.SimpleDateFormat": true,

	"java.time.DayOfWeek": true, "java.time.Duration": true, "java.time.Instant": true,
	"java.time.LocalDate": true, "java.time.LocalDateTime": true, "java.time.LocalTime": true,
	"java.time.Month": true, "java.time.MonthDay": true, "java.time.OffsetDateTime": true,
	"java.time.OffsetTime": true, "java.time.Period": true, "java.time.Year": true,
	"java.time.YearMonth": true, "java.time.ZoneId": true, "java.time.ZoneOffset": true,
	"java.time.ZonedDateTime": true,

	"java.util.ArrayDeque": true, "java.util.ArrayList": true, "java.util.BitSet": true,
	"java.util.Calendar": true, "java.util.Currency": true, "java.util.Date": true, "java.util.EnumMap": true,
	"java.util.EnumSet": true, "java.util.EventObject": true, "java.util.GregorianCalendar": true,
	"java.util.HashMap": true, "java.util.HashSet": true, "java.util.Hashtable": true,
	"java.util.IdentityHashMap": true, "java.util.LinkedHashMap": true, "java.util.LinkedHashSet": true,
	"java.util.LinkedList": true, "java.util.Locale": true, "java.util.PriorityQueue": true,
	"java.util.Properties": true, "java.util.Random": true, "java.util.Stack": true,
	"java.util.TimeZone": true, "java.util.TreeMap": true, "java.util.TreeSet": true, "java.util.UUID": true,
	"java.util.Vector": true,

	"java.util.concurrent.ConcurrentHashMap": true, "java.util.concurrent.ConcurrentLinkedQueue": true,
	"java.util.concurrent.ConcurrentSkipListMap": true, "java.util.concurrent.CopyOnWriteArrayList": true,
	"java.util.concurrent.CopyOnWriteArraySet": true, "java.util.concurrent.LinkedBlockingQueue": true,
	"java.util.concurrent.Semaphore": true, "java.util.concurrent.TimeUnit": true,

	"java.util.concurrent.atomic.AtomicBoolean": true, "java.util.concurrent.atomic.AtomicInteger": true,
	"java.util.concurrent.atomic.AtomicIntegerArray": true, "java.util.concurrent.atomic.AtomicLong": true,
	"java.util.concurrent.atomic.AtomicLongArray": true, "java.util.concurrent.atomic.AtomicReference": true,
	"java.util.concurrent.atomic.LongAdder": true,

	"java.util.concurrent.locks.ReentrantLock": true, "java.util.concurrent.locks.ReentrantReadWriteLock": true,

	"java.util.regex.Pattern": true,

	"java.sql.Date": true, "java.sql.Time": true, "java.sql.Timestamp": true,
}

var jdkIndex = buildJDKIndex()

func buildJDKIndex() map[string]map[string]bool {
	out := make(map[string]map[string]bool, len(jdkTypes))
	for pkg, names := range jdkTypes {
		set := make(map[string]bool, len(names))
		for _, name := range names {
			set[name] = true
		}
		out[pkg] = set
	}
	return out
}

func jdkHas(pkg, name string) bool {
	return jdkIndex[pkg][name]
}

// isSerializableJDK reports whether a resolved platform type is serializable.
func isSerializableJDK(qualified string) bool {
	if serializableJDK[qualified] {
		return true
	}
	if !strings.HasPrefix(qualified, "java.") && !strings.HasPrefix(qualified, "javax.") {
		return false
	}
	return strings.HasSuffix(qualified, "Exception") || strings.HasSuffix(qualified, "Error")
}
