package report

// F06-style report fixtures. Column-1 characters are Fortran carriage
// control: '1' new page, '0' double space, ' ' single space.

const staticReport = `1    CANTILEVER BEAM, TIP LOAD                                    JANUARY  12, 1995  NASTRAN  1/12/95   PAGE     4
0                                                                                                      SUBCASE 1

                                             D I S P L A C E M E N T   V E C T O R

      POINT ID.   TYPE          T1             T2             T3             R1             R2             R3
             1      G      0.0            0.0            0.0            0.0            0.0            0.0
             2      G      0.0            0.0           -7.812500E-03   0.0            3.906250E-04   0.0
            11      G      0.0            0.0           -3.125000E-02   0.0            6.250000E-04   0.0
0
1    CANTILEVER BEAM, TIP LOAD                                    JANUARY  12, 1995  NASTRAN  1/12/95   PAGE     5
0                                                                                                      SUBCASE 1

                                   S T R E S S E S   I N   R O D   E L E M E N T S      ( C R O D )

       ELEMENT       AXIAL       SAFETY      TORSIONAL     SAFETY
         ID.        STRESS       MARGIN        STRESS      MARGIN
             1    1.000000E+04    8.0E-01    2.500000E+03    5.0E-01
             2   -5.000000E+03    1.2E+00    1.250000E+03    9.0E-01
0
1    CANTILEVER BEAM, TIP LOAD                                    JANUARY  12, 1995  NASTRAN  1/12/95   PAGE     6
0                                                                                                      SUBCASE 1

                                 S T R E S S E S   I N   S H E A R   P A N E L S      ( C S H E A R )

       ELEMENT       MAX            AVG        SAFETY       ELEMENT       MAX            AVG        SAFETY
         ID.        SHEAR          SHEAR       MARGIN         ID.        SHEAR          SHEAR       MARGIN
           101    5.000000E+03    2.500000E+03    1.2E+00      102    4.000000E+03    2.000000E+03    1.5E+00
0
1    CANTILEVER BEAM, TIP LOAD                                    JANUARY  12, 1995  NASTRAN  1/12/95   PAGE     7
0                                                                                                      SUBCASE 1

              S T R E S S E S   I N   Q U A D R I L A T E R A L   M E M B R A N E   E L E M E N T S   ( Q D M E M )

       ELEMENT      NORMAL-X       NORMAL-Y      SHEAR-XY       ANGLE         MAJOR          MINOR        MAX-SHEAR
         ID.
           201    1.000000E+03   -2.000000E+02    5.000000E+02    1.5000E+01    1.100000E+03   -3.000000E+02    7.000000E+02
0
1    CANTILEVER BEAM, TIP LOAD                                    JANUARY  12, 1995  NASTRAN  1/12/95   PAGE     8

      * * * END OF JOB * * *
`

// twoSubcaseReport exercises report-order attribution (subcase 2
// prints before subcase 1) and pagination (subcase 2's table resumes
// on a second page and must merge).
const twoSubcaseReport = `1    FRAME, TWO LOAD CASES                                        JANUARY  12, 1995  NASTRAN  1/12/95   PAGE     4
0                                                                                                      SUBCASE 2

                                             D I S P L A C E M E N T   V E C T O R

      POINT ID.   TYPE          T1             T2             T3             R1             R2             R3
             1      G      1.000000E-03   0.0            0.0            0.0            0.0            0.0
1    FRAME, TWO LOAD CASES                                        JANUARY  12, 1995  NASTRAN  1/12/95   PAGE     5
0                                                                                                      SUBCASE 2

                                             D I S P L A C E M E N T   V E C T O R

      POINT ID.   TYPE          T1             T2             T3             R1             R2             R3
             2      G      2.000000E-03   0.0            0.0            0.0            0.0            0.0
0
1    FRAME, TWO LOAD CASES                                        JANUARY  12, 1995  NASTRAN  1/12/95   PAGE     6
0                                                                                                      SUBCASE 1

                                             D I S P L A C E M E N T   V E C T O R

      POINT ID.   TYPE          T1             T2             T3             R1             R2             R3
             1      G      5.000000E-04   0.0            0.0            0.0            0.0            0.0
0

      * * * END OF JOB * * *
`

// modalReport has four modes; mode 3 carries a malformed (negative)
// frequency and must be downgraded, not dropped, and must not abort
// mode 4.
const modalReport = `1    SIMPLY SUPPORTED BEAM, MODAL                                 JANUARY  12, 1995  NASTRAN  1/12/95   PAGE     3

                                              R E A L   E I G E N V A L U E S
         MODE    EXTRACTION      EIGENVALUE            RADIANS             CYCLES            GENERALIZED         GENERALIZED
          NO.       ORDER                                                                       MASS              STIFFNESS
             1         1        9.869604E+00        3.141593E+00        5.000000E-01        1.000000E+00        9.869604E+00
             2         2        1.579137E+02        1.256637E+01        2.000000E+00        1.000000E+00        1.579137E+02
             3         3        7.995484E+02        2.827433E+01       -4.500000E+00        1.000000E+00        7.995484E+02
             4         4        2.527309E+03        5.026548E+01        8.000000E+00        1.000000E+00        2.527309E+03
 *** USER INFORMATION MESSAGE 3035, EIGENVALUE EXTRACTION COMPLETED.
1    SIMPLY SUPPORTED BEAM, MODAL                                 JANUARY  12, 1995  NASTRAN  1/12/95   PAGE     4

      * * * END OF JOB * * *
`

// fatalReport signals an analytical failure; the Engine may still
// exit zero with this in the report.
const fatalReportText = `1    BROKEN DECK                                                  JANUARY  12, 1995  NASTRAN  1/12/95   PAGE     1
 *** USER FATAL MESSAGE 316, ILLEGAL DATA ON BULK DATA CARD GRID
 JOB TERMINATED DUE TO FATAL ERRORS
`

// truncatedReport is what a timed-out run leaves behind: no terminal
// marker of either kind.
const truncatedReport = `1    BIG MODEL                                                    JANUARY  12, 1995  NASTRAN  1/12/95   PAGE     1
     MATRIX ASSEMBLY IN PROGRESS
`

// unknownCategoryReport carries only a stress table layout the decoder
// does not model; extraction must skip it silently.
const unknownCategoryReport = `1    BAR MODEL                                                    JANUARY  12, 1995  NASTRAN  1/12/95   PAGE     4
0                                                                                                      SUBCASE 1

                                   S T R E S S E S   I N   B A R   E L E M E N T S      ( C B A R )

       ELEMENT       SA1            SA2            SA3            SA4
         ID.
             1    1.000000E+04    2.000000E+04    3.000000E+04    4.000000E+04

      * * * END OF JOB * * *
`
